package config

type API struct {
	Bind string `env:"API_HTTP_SERVER_BIND" envDefault:":8080"`
}
