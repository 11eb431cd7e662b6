package cmds

import (
	"context"
	"strings"

	"github.com/go-go-golems/confab/pkg/auth"
	"github.com/go-go-golems/confab/pkg/remote"
	"github.com/go-go-golems/confab/pkg/session"
	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/go-go-golems/confab/pkg/store"
	"github.com/pkg/errors"
)

// EchoAPIURL selects the local echo endpoint instead of a backend.
const EchoAPIURL = "echo"

func openStore(s *settings.Settings) (store.Store, error) {
	st, err := store.Open(s.Store, s.StorePath)
	if err != nil {
		return nil, errors.Wrap(err, "open history store")
	}
	return st, nil
}

func newEndpoint(s *settings.Settings) (remote.Endpoint, error) {
	if strings.EqualFold(s.APIURL, EchoAPIURL) {
		return remote.NewEchoEndpoint(), nil
	}
	options := []remote.HTTPEndpointOption{remote.WithTimeout(s.Timeout)}
	if s.ClientID != "" {
		options = append(options, remote.WithClientID(s.ClientID))
	}
	return remote.NewHTTPEndpoint(s.APIURL, options...)
}

// sessionDeps bundles what a command needs to drive a session.
type sessionDeps struct {
	Settings *settings.Settings
	Store    store.Store
	Holder   *auth.Holder
	Manager  *session.Manager
}

func (d *sessionDeps) Close() {
	if d.Store != nil {
		_ = d.Store.Close()
	}
}

func newSession(ctx context.Context, options ...session.ManagerOption) (*sessionDeps, error) {
	s := settings.Get()
	st, err := openStore(s)
	if err != nil {
		return nil, err
	}
	endpoint, err := newEndpoint(s)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	holder := auth.NewHolder(st)
	options = append(options, session.WithAuthHolder(holder))
	m := session.NewManager(st, endpoint, options...)
	m.Initialize(ctx)

	return &sessionDeps{
		Settings: s,
		Store:    st,
		Holder:   holder,
		Manager:  m,
	}, nil
}
