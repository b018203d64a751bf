package main

import "github.com/killallgit/coffeebreak-api/cmd"

// @title           Coffee Break API
// @version         1.0.0
// @description     Episode metadata extracted from the Coffee Break: Señal y Ruido podcast feed, info and web texts
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/coffeebreak-api
// @contact.email   support@example.com
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
