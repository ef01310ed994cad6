// seedcatalog genera un script SQL para poblar el catálogo local (productos e
// insumos) de un tenant a partir del export CSV de un POS legado de Windows
// (separador ';', decimales con coma, codificación Windows-1252).
//
// Uso: go run ./cmd/seedcatalog <tenant-id> [productos.csv] [insumos.csv]
// Por defecto busca productos.csv e insumos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/seed/001_catalog.sql
//
// Los IDs se derivan del nombre (UUID v5), así que re-ejecutar el script es
// idempotente: ON CONFLICT actualiza en vez de duplicar.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type productRow struct {
	id, sku, name string
	price, stock  decimal.Decimal
	trackStock    bool
}

type materialRow struct {
	id, name, unit  string
	stock, minStock decimal.Decimal
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seedcatalog <tenant-id> [productos.csv] [insumos.csv]")
		os.Exit(1)
	}
	tenantID := os.Args[1]
	productsPath, materialsPath := "productos.csv", "insumos.csv"
	if len(os.Args) > 2 {
		productsPath = os.Args[2]
	}
	if len(os.Args) > 3 {
		materialsPath = os.Args[3]
	}

	products, err := readProducts(productsPath, tenantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", productsPath, err)
		os.Exit(1)
	}
	materials, err := readMaterials(materialsPath, tenantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", materialsPath, err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outDir := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "seed")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	outPath := filepath.Join(outDir, "001_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	fmt.Fprintf(out, "-- Catálogo inicial del tenant %s\n", tenantID)
	fmt.Fprintf(out, "-- Generado desde %s y %s (export POS legado)\n\n", productsPath, materialsPath)

	out.WriteString("-- 1. Productos\n")
	for _, p := range products {
		fmt.Fprintf(out, "INSERT INTO products (id, tenant_id, sku, name, price, stock, track_stock)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', %s, %s, %t)\n",
			p.id, tenantID, escapeSQL(p.sku), escapeSQL(p.name), p.price, p.stock, p.trackStock)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price;\n")
	}

	out.WriteString("\n-- 2. Insumos\n")
	for _, m := range materials {
		fmt.Fprintf(out, "INSERT INTO materials (id, tenant_id, name, stock, unit, min_stock)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', %s, '%s', %s)\n",
			m.id, tenantID, escapeSQL(m.name), m.stock, escapeSQL(m.unit), m.minStock)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, unit = EXCLUDED.unit, min_stock = EXCLUDED.min_stock;\n")
	}

	// El libro de stock es append-only: el asiento inicial se inserta una sola
	// vez, nunca se actualiza.
	out.WriteString("\n-- 3. Asientos iniciales del libro de stock\n")
	for _, m := range materials {
		if !m.stock.IsPositive() {
			continue
		}
		movID := deterministicID(tenantID, "movement", m.name)
		fmt.Fprintf(out, "INSERT INTO stock_movements (id, tenant_id, entity_id, previous_stock, new_stock, delta, reason, note)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', 0, %s, %s, 'initial', 'carga inicial desde POS legado')\n",
			movID, tenantID, m.id, m.stock, m.stock)
		out.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	}

	fmt.Printf("Generado %s: %d productos, %d insumos\n", outPath, len(products), len(materials))
}

// readProducts parsea el CSV de productos: sku;nombre;precio;controla_stock;stock
func readProducts(path, tenantID string) ([]productRow, error) {
	records, err := readLegacyCSV(path)
	if err != nil {
		return nil, err
	}
	var out []productRow
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue // cabecera
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("fila %d: se esperaban 5 columnas, hay %d", i+1, len(rec))
		}
		sku, name := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if sku == "" || name == "" {
			continue
		}
		price, err := parseLegacyDecimal(rec[2])
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio: %w", i+1, err)
		}
		track := parseLegacyBool(rec[3])
		stock := decimal.Zero
		if track {
			if stock, err = parseLegacyDecimal(rec[4]); err != nil {
				return nil, fmt.Errorf("fila %d: stock: %w", i+1, err)
			}
		}
		out = append(out, productRow{
			id:         deterministicID(tenantID, "product", sku),
			sku:        sku,
			name:       name,
			price:      price,
			stock:      stock,
			trackStock: track,
		})
	}
	return out, nil
}

// readMaterials parsea el CSV de insumos: nombre;stock;unidad;minimo
func readMaterials(path, tenantID string) ([]materialRow, error) {
	records, err := readLegacyCSV(path)
	if err != nil {
		return nil, err
	}
	var out []materialRow
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "nombre") {
			continue // cabecera
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("fila %d: se esperaban 4 columnas, hay %d", i+1, len(rec))
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}
		stock, err := parseLegacyDecimal(rec[1])
		if err != nil {
			return nil, fmt.Errorf("fila %d: stock: %w", i+1, err)
		}
		minStock, err := parseLegacyDecimal(rec[3])
		if err != nil {
			return nil, fmt.Errorf("fila %d: minimo: %w", i+1, err)
		}
		out = append(out, materialRow{
			id:       deterministicID(tenantID, "material", name),
			name:     name,
			unit:     strings.TrimSpace(rec[2]),
			stock:    stock,
			minStock: minStock,
		})
	}
	return out, nil
}

// readLegacyCSV abre el archivo, lo decodifica desde Windows-1252 y lo parsea
// con ';' como separador (el formato de export de Excel en es-CO).
func readLegacyCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var decoded io.Reader = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	r := csv.NewReader(decoded)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// parseLegacyDecimal acepta coma o punto decimal; vacío es cero.
func parseLegacyDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func parseLegacyBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "si", "sí", "true", "s":
		return true
	}
	return false
}

// deterministicID deriva un UUID v5 estable del tenant y el identificador
// natural de la fila: mismo CSV, mismos IDs, script re-ejecutable.
func deterministicID(tenantID, kind, natural string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("cajapos:"+tenantID+":"+kind+":"+natural)).String()
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
