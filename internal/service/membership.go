package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/vpnshop/internal/domain"
)

// ChatMemberGetter is the part of the Bot API the gate needs. *bot.Bot implements it.
type ChatMemberGetter interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// MembershipGate checks that a user is subscribed to the main channel.
type MembershipGate struct {
	getter  ChatMemberGetter
	channel string
}

func NewMembershipGate(getter ChatMemberGetter, channel string) *MembershipGate {
	return &MembershipGate{getter: getter, channel: channel}
}

// Enabled reports whether a channel is configured.
func (g *MembershipGate) Enabled() bool {
	return g.channel != ""
}

func (g *MembershipGate) Check(ctx context.Context, userID int64) domain.Membership {
	if !g.Enabled() {
		return domain.Membership{Status: domain.MembershipMember}
	}

	member, err := g.getter.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: channelChatID(g.channel),
		UserID: userID,
	})
	if err != nil {
		reason := domain.ReasonUnavailable
		if isMisconfiguration(err) {
			reason = domain.ReasonMisconfigured
		}
		slog.Warn("channel membership lookup failed",
			"error", err,
			"channel", g.channel,
			"user_id", userID,
			"reason", reason,
		)
		return domain.Membership{Status: domain.MembershipUndetermined, Reason: reason, Err: err}
	}
	if member == nil {
		return domain.Membership{Status: domain.MembershipUndetermined, Reason: domain.ReasonUnavailable}
	}

	if isMemberStatus(member) {
		return domain.Membership{Status: domain.MembershipMember}
	}
	return domain.Membership{Status: domain.MembershipNotMember}
}

func isMemberStatus(member *models.ChatMember) bool {
	switch member.Type {
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator, models.ChatMemberTypeMember:
		return true
	case models.ChatMemberTypeRestricted:
		return member.Restricted != nil && member.Restricted.IsMember
	default:
		return false
	}
}

// isMisconfiguration separates "the bot cannot look at this channel" from
// transient transport failures.
func isMisconfiguration(err error) bool {
	return errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorUnauthorized) ||
		errors.Is(err, bot.ErrorNotFound)
}

// channelChatID accepts both numeric ids (-100...) and @usernames.
func channelChatID(channel string) any {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id
	}
	return channel
}
