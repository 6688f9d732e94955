// @title           Irrigation node diagnostics API
// @version         1.0
// @description     Local status, command injection and event journal of one irrigation node.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token from /auth/sign-in.
package main

import (
	"fmt"
	"os"

	_ "irrigation_node/docs"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
