package repository

import (
    "database/sql"
    "errors"
    "fmt"
)

// InitSchema creates the service_requests and status_history tables
// when they do not exist.  Run via cmd/dbtool before first start.
func InitSchema(db *sql.DB) error {
    if db == nil {
        return errors.New("init schema: DB is nil")
    }

    const createRequests = `
    CREATE TABLE IF NOT EXISTS service_requests (
        id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        token               CHAR(36)        NOT NULL,
        municipality_code   VARCHAR(20)     NOT NULL,
        municipality_name   VARCHAR(100)    NOT NULL,
        citizen_name        VARCHAR(100)    NOT NULL,
        citizen_email       VARCHAR(100)    NULL,
        citizen_phone       VARCHAR(20)     NULL,
        pickup_address      VARCHAR(200)    NOT NULL,
        item_description    VARCHAR(500)    NOT NULL,
        preferred_date      DATE            NOT NULL,
        preferred_time_slot VARCHAR(20)     NOT NULL,
        status              VARCHAR(20)     NOT NULL DEFAULT 'RECEIVED',
        created_at          DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at          DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_service_requests_token (token),
        KEY idx_service_requests_municipality_date (municipality_name, preferred_date)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

    const createHistory = `
    CREATE TABLE IF NOT EXISTS status_history (
        id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        request_id      BIGINT UNSIGNED NOT NULL,
        previous_status VARCHAR(20)     NULL,
        new_status      VARCHAR(20)     NOT NULL,
        timestamp       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        notes           VARCHAR(500)    NULL,
        PRIMARY KEY (id),
        KEY idx_status_history_request_timestamp (request_id, timestamp),
        CONSTRAINT fk_status_history_request
            FOREIGN KEY (request_id) REFERENCES service_requests (id)
            ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

    for _, stmt := range []string{createRequests, createHistory} {
        if _, err := db.Exec(stmt); err != nil {
            return fmt.Errorf("init schema: %w", err)
        }
    }
    return nil
}
