package sunat

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador del RUC (módulo 11, SUNAT).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateRUC valida que el RUC tenga 11 dígitos, un prefijo de tipo de
// contribuyente conocido (10, 15, 17, 20) y dígito verificador correcto.
func ValidateRUC(ruc string) error {
	digits := onlyDigits(ruc)
	if len(digits) != 11 {
		return fmt.Errorf("sunat: RUC debe tener 11 dígitos, tiene %d", len(digits))
	}
	switch digits[:2] {
	case "10", "15", "17", "20":
		// prefijos válidos: persona natural, sucesiones, otros, persona jurídica
	default:
		return fmt.Errorf("sunat: prefijo de RUC inválido %q", digits[:2])
	}

	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * rucWeights[i]
	}
	check := 11 - sum%11
	if check == 10 {
		check = 0
	} else if check == 11 {
		check = 1
	}
	if int(digits[10]-'0') != check {
		return fmt.Errorf("sunat: dígito verificador incorrecto (esperado %d)", check)
	}
	return nil
}

// ValidateDNI valida el formato del DNI (8 dígitos).
func ValidateDNI(dni string) error {
	digits := onlyDigits(dni)
	if len(digits) != 8 {
		return fmt.Errorf("sunat: DNI debe tener 8 dígitos, tiene %d", len(digits))
	}
	return nil
}

func onlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
