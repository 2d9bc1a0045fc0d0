package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrProvisioningFailed  = errors.New("provisioning failed")
	ErrMalformedResponse   = errors.New("malformed provisioning response")
	ErrPurchaseInProgress  = errors.New("purchase already in progress")
	ErrDialogNotFound      = errors.New("dialog not found")
)
