package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

var _ repository.ProcesamientoRepository = (*ProcesamientoRepo)(nil)

// ProcesamientoRepo implementación de ProcesamientoRepository sobre PostgreSQL.
type ProcesamientoRepo struct {
	pool *pgxpool.Pool
}

// NewProcesamientoRepository construye el adaptador con el pool.
func NewProcesamientoRepository(pool *pgxpool.Pool) *ProcesamientoRepo {
	return &ProcesamientoRepo{pool: pool}
}

// Create guarda cabecera y líneas en una sola transacción.
func (r *ProcesamientoRepo) Create(p *entity.Procesamiento, lineas []entity.ProcesamientoLinea) error {
	ctx := context.Background()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO procesamientos (id, invoice_id, cufe, proveedor, proveedor_nit, cliente, moneda, fecha_emision, total_factura, num_lineas, archivo_origen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.Exec(ctx, query,
		p.ID, nullIfEmpty(p.InvoiceID), nullIfEmpty(p.CUFE), p.Proveedor, nullIfEmpty(p.ProveedorNIT),
		nullIfEmpty(p.Cliente), nullIfEmpty(p.Moneda), nullIfEmpty(p.FechaEmision),
		p.TotalFactura, p.NumLineas, p.ArchivoOrigen, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("procesamiento ya registrado: %w", err)
		}
		return fmt.Errorf("insert procesamiento: %w", err)
	}

	lineQuery := `
		INSERT INTO procesamiento_lineas (id, procesamiento_id, orden, producto, cantidad, iva_percent, descuento_percent, costo_bruto_unit, costo_neto_unit, venta_bruta_unit, venta_neta_unit, utilidad_percent, source_line_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for i := range lineas {
		l := &lineas[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.ProcesamientoID = p.ID
		// La posición en el slice es el orden de la factura de origen.
		l.Orden = i
		_, err = tx.Exec(ctx, lineQuery,
			l.ID, l.ProcesamientoID, l.Orden, l.Producto, l.Cantidad, l.IvaPercent, l.DescuentoPercent,
			l.CostoBrutoUnit, l.CostoNetoUnit, l.VentaBrutaUnit, l.VentaNetaUnit,
			l.UtilidadPercent, nullIfEmpty(l.SourceLineID),
		)
		if err != nil {
			return fmt.Errorf("insert línea de procesamiento: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List devuelve cabeceras ordenadas por fecha descendente.
func (r *ProcesamientoRepo) List(limit, offset int) ([]entity.Procesamiento, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, invoice_id, cufe, proveedor, proveedor_nit, cliente, moneda, fecha_emision, total_factura, num_lineas, archivo_origen, created_at
		FROM procesamientos
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list procesamientos: %w", err)
	}
	defer rows.Close()

	var out []entity.Procesamiento
	for rows.Next() {
		p, err := scanProcesamiento(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID devuelve la cabecera y todas sus líneas; (nil, nil, nil) si no existe.
func (r *ProcesamientoRepo) GetByID(id string) (*entity.Procesamiento, []entity.ProcesamientoLinea, error) {
	ctx := context.Background()
	query := `
		SELECT id, invoice_id, cufe, proveedor, proveedor_nit, cliente, moneda, fecha_emision, total_factura, num_lineas, archivo_origen, created_at
		FROM procesamientos
		WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProcesamiento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	lineQuery := `
		SELECT id, procesamiento_id, orden, producto, cantidad, iva_percent, descuento_percent, costo_bruto_unit, costo_neto_unit, venta_bruta_unit, venta_neta_unit, utilidad_percent, source_line_id
		FROM procesamiento_lineas
		WHERE procesamiento_id = $1
		ORDER BY orden`
	rows, err := r.pool.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list líneas de procesamiento: %w", err)
	}
	defer rows.Close()

	var lineas []entity.ProcesamientoLinea
	for rows.Next() {
		var l entity.ProcesamientoLinea
		var sourceLineID *string
		if err := rows.Scan(
			&l.ID, &l.ProcesamientoID, &l.Orden, &l.Producto, &l.Cantidad, &l.IvaPercent, &l.DescuentoPercent,
			&l.CostoBrutoUnit, &l.CostoNetoUnit, &l.VentaBrutaUnit, &l.VentaNetaUnit,
			&l.UtilidadPercent, &sourceLineID,
		); err != nil {
			return nil, nil, fmt.Errorf("scan línea de procesamiento: %w", err)
		}
		if sourceLineID != nil {
			l.SourceLineID = *sourceLineID
		}
		lineas = append(lineas, l)
	}
	return &p, lineas, rows.Err()
}

func scanProcesamiento(row pgx.Row) (entity.Procesamiento, error) {
	var p entity.Procesamiento
	var invoiceID, cufe, nit, cliente, moneda, fecha *string
	err := row.Scan(
		&p.ID, &invoiceID, &cufe, &p.Proveedor, &nit, &cliente, &moneda, &fecha,
		&p.TotalFactura, &p.NumLineas, &p.ArchivoOrigen, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan procesamiento: %w", err)
	}
	p.InvoiceID = deref(invoiceID)
	p.CUFE = deref(cufe)
	p.ProveedorNIT = deref(nit)
	p.Cliente = deref(cliente)
	p.Moneda = deref(moneda)
	p.FechaEmision = deref(fecha)
	return p, nil
}
