package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserAlreadyExists       = errors.New("user already exists")
	ErrNilUser                 = errors.New("user is nil")
	ErrVendorNotFound          = errors.New("vendor not found")
	ErrNilVendor               = errors.New("vendor is nil")
	ErrNilPendingTransaction   = errors.New("pending transaction is nil")
	ErrInvalidStatus           = errors.New("invalid pending transaction status")
	ErrUnknownBarcode          = errors.New("unknown barcode")
	ErrUnknownVendor           = errors.New("unknown vendor")
	ErrBarcodeNotClaimed       = errors.New("barcode not claimed")
	ErrBarcodeAlreadyConfirmed = errors.New("barcode already confirmed")
	ErrBarcodeExhausted        = errors.New("could not allocate a free barcode")
	ErrInvalidCredentials      = fmt.Errorf("invalid credentials")
	ErrInternal                = fmt.Errorf("internal error")
	ErrInvalidInput            = fmt.Errorf("invalid input")
)
