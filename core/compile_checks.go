package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ IdentityProvider = IdentityProviderFunc(nil)
	_ error            = (*AuthError)(nil)
	_ error            = (*ServiceException)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
