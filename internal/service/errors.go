package service

import (
	"errors"
	"fmt"
)

// Taxonomía de errores de negocio. Los handlers los traducen a HTTP:
// NoEncontrado→404, YaRegistrado→409, OperacionInvalida→400,
// EnvioExterno→502; todo lo demás→500.
var (
	ErrNoEncontrado      = errors.New("no encontrado")
	ErrYaRegistrado      = errors.New("ya registrado")
	ErrOperacionInvalida = errors.New("operación inválida")
	ErrEnvioExterno      = errors.New("fallo de envío externo")
)

// wrap attaches a human message to one of the sentinel errors while keeping
// errors.Is matching.
func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
