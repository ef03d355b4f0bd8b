package domain

// Config is the bot identity and command surface shared by the usecases.
type Config struct {
	DID             string   `yaml:"did"`
	Domains         []string `yaml:"domains"`
	AllowedPageHost string   `yaml:"allowedPageHost"`
}
