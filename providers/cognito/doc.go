// Package cognito implements core.IdentityProvider against the Amazon Cognito
// user pools JSON 1.1 API.
package cognito
