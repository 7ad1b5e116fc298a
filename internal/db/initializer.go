package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

// InitializeDatabase creates the sabanas schema programmatically. It is the
// --init-db escape hatch for environments without a migration runner;
// RunDatabaseMigrations (migrate.go) is the normal path and should be
// preferred wherever golang-migrate's bookkeeping table is acceptable.
func InitializeDatabase(ctx context.Context, db *sql.DB, dropExisting bool) error {
	log := logger.WithContext(ctx)

	if dropExisting {
		log.Warn("Dropping existing tables and data...")
		if err := dropAllTables(ctx, db); err != nil {
			return fmt.Errorf("failed to drop existing tables: %w", err)
		}
	}

	log.Info("Creating database schema...")
	if err := createCoreTables(ctx, db); err != nil {
		return fmt.Errorf("failed to create core tables: %w", err)
	}

	log.Info("Database initialization completed successfully")
	return nil
}

func dropAllTables(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return err
	}

	tables := []string{"registros_telefonicos", "archivos"}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)); err != nil {
			logger.WithContext(ctx).WithError(err).WithField("table", table).Warn("Failed to drop table")
		}
	}

	if _, err := db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return err
	}

	return nil
}

func createCoreTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS archivos (
            id_sabanas BIGINT UNSIGNED NOT NULL PRIMARY KEY,
            ruta VARCHAR(1024) NOT NULL,
            estado ENUM('uploaded','queued','processing','processed','error') NOT NULL DEFAULT 'uploaded',
            id_carrier INT NULL,
            nombre_carrier VARCHAR(64) NULL,
            iniciado_en DATETIME NULL,
            finalizado_en DATETIME NULL,
            creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            actualizado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
            INDEX idx_archivos_estado (estado)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS registros_telefonicos (
            id_registro_telefonico BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
            id_sabanas BIGINT UNSIGNED NOT NULL,
            numero_a VARCHAR(32) NOT NULL,
            numero_b VARCHAR(32) NULL,
            id_tipo_registro TINYINT UNSIGNED NOT NULL,
            fecha_hora DATETIME NOT NULL,
            duracion INT UNSIGNED NOT NULL DEFAULT 0,
            latitud VARCHAR(64) NULL,
            longitud VARCHAR(64) NULL,
            azimuth DOUBLE NULL,
            latitud_decimal DOUBLE NULL,
            longitud_decimal DOUBLE NULL,
            altitud DOUBLE NOT NULL DEFAULT 0,
            coordenada_objetivo BOOLEAN NULL,
            imei VARCHAR(16) NULL,
            telefono VARCHAR(32) NULL,
            CONSTRAINT fk_registros_archivo FOREIGN KEY (id_sabanas) REFERENCES archivos(id_sabanas) ON DELETE CASCADE,
            INDEX idx_registros_archivo (id_sabanas),
            INDEX idx_registros_fecha (fecha_hora)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	return nil
}
