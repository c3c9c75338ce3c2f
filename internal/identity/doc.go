// Package identity implements the CampusHub identity authority: the backend
// that owns accounts and issues sessions.
//
// # Flow
//
//  1. SignUp stores an unconfirmed account (argon2 verifier, never the
//     password) and sends a 6-digit one-time code through an OTPSender.
//  2. VerifyOTP checks the code, confirms the account and signs the user in.
//  3. SignIn checks the password of a confirmed account and issues a session.
//  4. SignOut revokes the session's token id; GetUser validates a token.
//
// Sessions are HS256 JWTs (subject = user id, jti = random id) with a fixed
// lifetime. There are no refresh tokens: an expired session has to sign in
// again.
//
// # Errors
//
// All failures are sentinels from internal/common, so they survive the gRPC
// transport: ErrInvalidCredentials, ErrEmailNotConfirmed, ErrEmailTaken,
// ErrInvalidOTP, ErrOTPExpired, ErrInvalidToken, ErrTokenExpired,
// ErrInvalidInput.
package identity
