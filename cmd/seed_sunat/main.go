// seed_sunat genera el script SQL con los datos paramétricos SUNAT del sistema:
// catálogos de comprobante e identidad, series habilitadas por tipo y, si se
// pasa por flags, la fila del emisor.
//
// Uso: go run ./cmd/seed_sunat [-ruc 20131312955 -name "CLINICA ..."]
// Escribe: internal/infrastructure/postgres/migrations/002_seed_sunat.sql
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// Series habilitadas por defecto para la clínica (una por tipo de comprobante).
var defaultSeries = map[string]string{
	pkgsunat.DocTypeFactura: "F001",
	pkgsunat.DocTypeBoleta:  "B001",
}

func main() {
	ruc := flag.String("ruc", "", "RUC del emisor (opcional; genera el INSERT en companies)")
	name := flag.String("name", "", "razón social del emisor")
	address := flag.String("address", "", "domicilio fiscal")
	ubigeo := flag.String("ubigeo", "", "código ubigeo del domicilio (6 dígitos)")
	flag.Parse()

	if *ruc != "" {
		if err := pkgsunat.ValidateRUC(*ruc); err != nil {
			fmt.Fprintf(os.Stderr, "RUC %q inválido: %v\n", *ruc, err)
			os.Exit(1)
		}
	}
	if *ruc != "" && *name == "" {
		fmt.Fprintln(os.Stderr, "-name es requerido cuando se pasa -ruc")
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_sunat.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Datos paramétricos SUNAT (catálogos 01 y 06) y series habilitadas.\n")
	out.WriteString("-- Generado por cmd/seed_sunat\n\n")

	out.WriteString("-- 1. Contadores de serie en cero (el allocator los crea solo si faltan;\n")
	out.WriteString("--    sembrarlos deja las series visibles desde el inicio)\n")
	out.WriteString("INSERT INTO sequence_counters (document_type, series, last_issued) VALUES\n")
	rows := make([]string, 0, len(defaultSeries))
	for _, docType := range []string{pkgsunat.DocTypeFactura, pkgsunat.DocTypeBoleta} {
		rows = append(rows, fmt.Sprintf("  ('%s', '%s', 0)", docType, defaultSeries[docType]))
	}
	out.WriteString(strings.Join(rows, ",\n"))
	out.WriteString("\nON CONFLICT (document_type, series) DO NOTHING;\n\n")

	if *ruc != "" {
		out.WriteString("-- 2. Emisor\n")
		fmt.Fprintf(out,
			"INSERT INTO companies (id, ruc, legal_name, address, ubigeo)\nVALUES (gen_random_uuid(), '%s', '%s', '%s', '%s')\nON CONFLICT (ruc) DO UPDATE SET legal_name = EXCLUDED.legal_name, address = EXCLUDED.address, ubigeo = EXCLUDED.ubigeo;\n",
			*ruc, escapeSQL(*name), escapeSQL(*address), escapeSQL(*ubigeo))
	}

	fmt.Printf("Generado %s\n", outPath)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
