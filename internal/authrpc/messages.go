package authrpc

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used in request and response structs.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldCode        = "code"
	FieldType        = "type"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresAt   = "expires_at"
	FieldUser        = "user"
	FieldID          = "id"
	FieldStatus      = "status"
)

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// CredentialsRequest builds a SignUp or SignIn request.
func CredentialsRequest(email, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldEmail:    structpb.NewStringValue(email),
		FieldPassword: structpb.NewStringValue(password),
	}}
}

func Credentials(in *structpb.Struct) (email, password string) {
	return stringField(in, FieldEmail), stringField(in, FieldPassword)
}

func VerifyOTPRequest(email, code, otpType string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldEmail: structpb.NewStringValue(email),
		FieldCode:  structpb.NewStringValue(code),
		FieldType:  structpb.NewStringValue(otpType),
	}}
}

func VerifyOTPArgs(in *structpb.Struct) (email, code, otpType string) {
	return stringField(in, FieldEmail), stringField(in, FieldCode), stringField(in, FieldType)
}

func UserToStruct(u models.User) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:    structpb.NewStringValue(u.ID),
		FieldEmail: structpb.NewStringValue(u.Email),
	}}
}

func UserFromStruct(s *structpb.Struct) (*models.User, error) {
	u := &models.User{ID: stringField(s, FieldID), Email: stringField(s, FieldEmail)}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: user without id", common.ErrInternal)
	}
	return u, nil
}

func SessionToStruct(sess *models.Session) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldAccessToken: structpb.NewStringValue(sess.AccessToken),
		FieldTokenType:   structpb.NewStringValue(sess.TokenType),
		FieldExpiresAt:   structpb.NewStringValue(sess.ExpiresAt.UTC().Format(time.RFC3339Nano)),
		FieldUser:        structpb.NewStructValue(UserToStruct(sess.User)),
	}}
}

func SessionFromStruct(s *structpb.Struct) (*models.Session, error) {
	token := stringField(s, FieldAccessToken)
	if token == "" {
		return nil, fmt.Errorf("%w: session without token", common.ErrInternal)
	}
	exp, err := time.Parse(time.RFC3339Nano, stringField(s, FieldExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("%w: bad expires_at: %v", common.ErrInternal, err)
	}
	u, err := UserFromStruct(s.GetFields()[FieldUser].GetStructValue())
	if err != nil {
		return nil, err
	}
	return &models.Session{
		AccessToken: token,
		TokenType:   stringField(s, FieldTokenType),
		ExpiresAt:   exp,
		User:        *u,
	}, nil
}

func StatusResponse(status string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldStatus: structpb.NewStringValue(status),
	}}
}

func Status(s *structpb.Struct) string {
	return stringField(s, FieldStatus)
}
