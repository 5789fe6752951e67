// Package jwt issues and verifies HS256 session tokens.
//
// A token names the authenticated recipient in "sub" and the channel it was
// verified through in "type". Tokens are stateless: there is no revocation,
// they simply stop verifying once "exp" has passed.
package jwt
