package repo

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteRepositories implements Repositories over a single SQLite file.
type SQLiteRepositories struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the entity database at path.
func OpenSQLite(path string) (*SQLiteRepositories, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := initEntitySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepositories{db: db}, nil
}

func initEntitySchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (id TEXT PRIMARY KEY, name TEXT, number TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS addresses (id TEXT PRIMARY KEY, street TEXT, zip_code TEXT, city TEXT, country TEXT)`,
		`CREATE TABLE IF NOT EXISTS audio_devices (id TEXT PRIMARY KEY, name TEXT, model TEXT, serial_number TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS cities (id TEXT PRIMARY KEY, name TEXT, region TEXT)`,
		`CREATE TABLE IF NOT EXISTS clients (id TEXT PRIMARY KEY, name TEXT, version TEXT, status TEXT, active INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE IF NOT EXISTS countries (id TEXT PRIMARY KEY, name TEXT, code TEXT)`,
		`CREATE TABLE IF NOT EXISTS deployment_variants (id TEXT PRIMARY KEY, name TEXT, description TEXT)`,
		`CREATE TABLE IF NOT EXISTS installed_software (id TEXT PRIMARY KEY, name TEXT, version TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS phone_integrations (id TEXT PRIMARY KEY, name TEXT, vendor TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS projects (id TEXT PRIMARY KEY, name TEXT, number TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS radios (id TEXT PRIMARY KEY, name TEXT, serial_number TEXT, status TEXT, fire_zone TEXT)`,
		`CREATE TABLE IF NOT EXISTS servers (id TEXT PRIMARY KEY, hostname TEXT, ip_address TEXT, os TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS service_contracts (id TEXT PRIMARY KEY, number TEXT, type TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS sites (id TEXT PRIMARY KEY, name TEXT, description TEXT, fire_zone TEXT)`,
		`CREATE TABLE IF NOT EXISTS software (id TEXT PRIMARY KEY, name TEXT, version TEXT, status TEXT)`,
		`CREATE TABLE IF NOT EXISTS upgrade_plans (id TEXT PRIMARY KEY, name TEXT, target_version TEXT, status TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize entity schema: %w", err)
		}
	}
	return nil
}

// queryAll runs a full-table fetch and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRepositories) Accounts(ctx context.Context) ([]Account, error) {
	return queryAll(ctx, r.db, `SELECT id, name, number, status FROM accounts ORDER BY id`,
		func(rows *sql.Rows) (Account, error) {
			var a Account
			err := rows.Scan(&a.ID, &a.Name, &a.Number, &a.Status)
			return a, err
		})
}

func (r *SQLiteRepositories) Addresses(ctx context.Context) ([]Address, error) {
	return queryAll(ctx, r.db, `SELECT id, street, zip_code, city, country FROM addresses ORDER BY id`,
		func(rows *sql.Rows) (Address, error) {
			var a Address
			err := rows.Scan(&a.ID, &a.Street, &a.ZipCode, &a.City, &a.Country)
			return a, err
		})
}

func (r *SQLiteRepositories) AudioDevices(ctx context.Context) ([]AudioDevice, error) {
	return queryAll(ctx, r.db, `SELECT id, name, model, serial_number, status FROM audio_devices ORDER BY id`,
		func(rows *sql.Rows) (AudioDevice, error) {
			var d AudioDevice
			err := rows.Scan(&d.ID, &d.Name, &d.Model, &d.SerialNumber, &d.Status)
			return d, err
		})
}

func (r *SQLiteRepositories) Cities(ctx context.Context) ([]City, error) {
	return queryAll(ctx, r.db, `SELECT id, name, region FROM cities ORDER BY id`,
		func(rows *sql.Rows) (City, error) {
			var c City
			err := rows.Scan(&c.ID, &c.Name, &c.Region)
			return c, err
		})
}

func (r *SQLiteRepositories) Clients(ctx context.Context) ([]Client, error) {
	return queryAll(ctx, r.db, `SELECT id, name, version, status, active FROM clients ORDER BY id`,
		func(rows *sql.Rows) (Client, error) {
			var c Client
			err := rows.Scan(&c.ID, &c.Name, &c.Version, &c.Status, &c.Active)
			return c, err
		})
}

func (r *SQLiteRepositories) Countries(ctx context.Context) ([]Country, error) {
	return queryAll(ctx, r.db, `SELECT id, name, code FROM countries ORDER BY id`,
		func(rows *sql.Rows) (Country, error) {
			var c Country
			err := rows.Scan(&c.ID, &c.Name, &c.Code)
			return c, err
		})
}

func (r *SQLiteRepositories) DeploymentVariants(ctx context.Context) ([]DeploymentVariant, error) {
	return queryAll(ctx, r.db, `SELECT id, name, description FROM deployment_variants ORDER BY id`,
		func(rows *sql.Rows) (DeploymentVariant, error) {
			var d DeploymentVariant
			err := rows.Scan(&d.ID, &d.Name, &d.Description)
			return d, err
		})
}

func (r *SQLiteRepositories) InstalledSoftware(ctx context.Context) ([]InstalledSoftware, error) {
	return queryAll(ctx, r.db, `SELECT id, name, version, status FROM installed_software ORDER BY id`,
		func(rows *sql.Rows) (InstalledSoftware, error) {
			var s InstalledSoftware
			err := rows.Scan(&s.ID, &s.Name, &s.Version, &s.Status)
			return s, err
		})
}

func (r *SQLiteRepositories) PhoneIntegrations(ctx context.Context) ([]PhoneIntegration, error) {
	return queryAll(ctx, r.db, `SELECT id, name, vendor, status FROM phone_integrations ORDER BY id`,
		func(rows *sql.Rows) (PhoneIntegration, error) {
			var p PhoneIntegration
			err := rows.Scan(&p.ID, &p.Name, &p.Vendor, &p.Status)
			return p, err
		})
}

func (r *SQLiteRepositories) Projects(ctx context.Context) ([]Project, error) {
	return queryAll(ctx, r.db, `SELECT id, name, number, status FROM projects ORDER BY id`,
		func(rows *sql.Rows) (Project, error) {
			var p Project
			err := rows.Scan(&p.ID, &p.Name, &p.Number, &p.Status)
			return p, err
		})
}

func (r *SQLiteRepositories) Radios(ctx context.Context) ([]Radio, error) {
	return queryAll(ctx, r.db, `SELECT id, name, serial_number, status, fire_zone FROM radios ORDER BY id`,
		func(rows *sql.Rows) (Radio, error) {
			var rd Radio
			err := rows.Scan(&rd.ID, &rd.Name, &rd.SerialNumber, &rd.Status, &rd.FireZone)
			return rd, err
		})
}

func (r *SQLiteRepositories) Servers(ctx context.Context) ([]Server, error) {
	return queryAll(ctx, r.db, `SELECT id, hostname, ip_address, os, status FROM servers ORDER BY id`,
		func(rows *sql.Rows) (Server, error) {
			var s Server
			err := rows.Scan(&s.ID, &s.Hostname, &s.IPAddress, &s.OS, &s.Status)
			return s, err
		})
}

func (r *SQLiteRepositories) ServiceContracts(ctx context.Context) ([]ServiceContract, error) {
	return queryAll(ctx, r.db, `SELECT id, number, type, status FROM service_contracts ORDER BY id`,
		func(rows *sql.Rows) (ServiceContract, error) {
			var s ServiceContract
			err := rows.Scan(&s.ID, &s.Number, &s.Type, &s.Status)
			return s, err
		})
}

func (r *SQLiteRepositories) Sites(ctx context.Context) ([]Site, error) {
	return queryAll(ctx, r.db, `SELECT id, name, description, fire_zone FROM sites ORDER BY id`,
		func(rows *sql.Rows) (Site, error) {
			var s Site
			err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.FireZone)
			return s, err
		})
}

func (r *SQLiteRepositories) Software(ctx context.Context) ([]Software, error) {
	return queryAll(ctx, r.db, `SELECT id, name, version, status FROM software ORDER BY id`,
		func(rows *sql.Rows) (Software, error) {
			var s Software
			err := rows.Scan(&s.ID, &s.Name, &s.Version, &s.Status)
			return s, err
		})
}

func (r *SQLiteRepositories) UpgradePlans(ctx context.Context) ([]UpgradePlan, error) {
	return queryAll(ctx, r.db, `SELECT id, name, target_version, status FROM upgrade_plans ORDER BY id`,
		func(rows *sql.Rows) (UpgradePlan, error) {
			var u UpgradePlan
			err := rows.Scan(&u.ID, &u.Name, &u.TargetVersion, &u.Status)
			return u, err
		})
}

// Close releases the underlying database handle.
func (r *SQLiteRepositories) Close() error {
	return r.db.Close()
}

// Verify interface implementation
var _ Repositories = (*SQLiteRepositories)(nil)
