// token emite un JWT firmado con JWT_SECRET para pruebas locales o integraciones internas.
//
// Uso: go run ./cmd/token -user u-1 -name "Ana" -role bodeguero -minutes 480
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/jhoicas/bodegas-api/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "ID del usuario (obligatorio)")
	name := flag.String("name", "", "Nombre del operador que quedará en los movimientos")
	role := flag.String("role", jwt.RoleVendedor, "admin | bodeguero | vendedor")
	minutes := flag.Int("minutes", 60, "Vigencia en minutos")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "falta -user")
		os.Exit(2)
	}
	switch *role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor:
	default:
		fmt.Fprintf(os.Stderr, "rol inválido: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *name, *role, cfg.JWT.Issuer, *minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
