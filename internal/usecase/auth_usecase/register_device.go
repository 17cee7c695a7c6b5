package auth

import (
	"context"
	"errors"
	"time"
)

// ID採番の約束
type IDGenerator interface {
	NewID() string
}

// 現在時刻の約束
type Clock interface {
	Now() time.Time
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(deviceID string, now time.Time) (token string, expiresAt time.Time, err error)
}

var ErrEmptyDeviceID = errors.New("empty device id")

// handlerがJSONにして返す
type DeviceToken struct {
	DeviceID    string `json:"device_id"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// 端末を登録してカート用のトークンを払い出す（オンボーディング）
type RegisterDeviceUsecase struct {
	issuer AccessTokenIssuer
	idGen  IDGenerator
	clock  Clock
}

// DI
func NewRegisterDeviceUsecase(issuer AccessTokenIssuer, idGen IDGenerator, clock Clock) *RegisterDeviceUsecase {
	return &RegisterDeviceUsecase{
		issuer: issuer,
		idGen:  idGen,
		clock:  clock,
	}
}

func (u *RegisterDeviceUsecase) Execute(ctx context.Context) (DeviceToken, error) {
	deviceID := u.idGen.NewID()
	if deviceID == "" {
		return DeviceToken{}, ErrEmptyDeviceID
	}

	now := u.clock.Now()
	token, exp, err := u.issuer.Issue(deviceID, now)
	if err != nil {
		return DeviceToken{}, err
	}

	return DeviceToken{
		DeviceID:    deviceID,
		AccessToken: token,
		ExpiresIn:   int(exp.Sub(now).Seconds()),
	}, nil
}
