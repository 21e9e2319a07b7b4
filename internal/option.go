package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	siteURL string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSiteURL overrides site.url for a build. Empty values are ignored.
func WithSiteURL(u string) Option {
	return func(a *application) {
		a.siteURL = u
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	return app, nil
}
