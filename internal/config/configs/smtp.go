package configs

// SMTP configures the outbound email transport and the template set used to
// render message bodies.
type SMTP struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	// From is the sender address on every outbound message.
	From string `env:"FROM" envDefault:"no-reply@localhost"`
	// TemplateGlob locates the HTML templates parsed at startup.
	TemplateGlob string `env:"TEMPLATE_GLOB" envDefault:"templates/*.html"`
}
