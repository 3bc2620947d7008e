package identity

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidDisplayName = errors.New("invalid display name")
	ErrInvalidToken       = errors.New("invalid token")
)

const maxDisplayNameLen = 32

type Participant struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// service issues and verifies participant identities. Identities are
// deliberately unauthenticated beyond possession of the token: anyone may
// claim any display name.
type service struct {
	secret []byte
}

func NewService(secret string) *service {
	return &service{secret: []byte(secret)}
}

type LoginResponse struct {
	Participant Participant
	Token       string
}

// Login mints a participant id for the session and a signed token binding
// it to the display name.
func (s *service) Login(displayName string) (LoginResponse, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return LoginResponse{}, ErrInvalidDisplayName
	}

	participant := Participant{
		Id:          uuid.NewString(),
		DisplayName: displayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"participant_id": participant.Id,
		"display_name":   participant.DisplayName,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		Participant: participant,
		Token:       signed,
	}, nil
}

// Parse verifies a token and returns the participant it carries.
func (s *service) Parse(tokenString string) (Participant, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Participant{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Participant{}, ErrInvalidToken
	}

	participantId, _ := claims["participant_id"].(string)
	displayName, _ := claims["display_name"].(string)
	if participantId == "" || displayName == "" {
		return Participant{}, ErrInvalidToken
	}

	return Participant{
		Id:          participantId,
		DisplayName: displayName,
	}, nil
}
