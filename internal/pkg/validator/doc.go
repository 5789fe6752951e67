// Package validator checks tagged structs and reports failures as a
// field-name to message map.
//
// The v10 implementation registers the recipient rules used by the auth
// module (email_shape and phone_e164) and reports field names in snake_case.
package validator
