package load

// Warehouse schema: three dimension tables keyed by surrogate ids (the
// neighbourhood dimension keeps its natural municipal id) and the fact table
// referencing them by nullable foreign keys that are back-filled by the
// reconciliation step.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS dim_event_types (
    event_type_id     SERIAL PRIMARY KEY,
    event_type_code   TEXT UNIQUE NOT NULL,
    event_description TEXT
);

CREATE TABLE IF NOT EXISTS dim_response_codes (
    response_code_id     SERIAL PRIMARY KEY,
    response_code        TEXT UNIQUE NOT NULL,
    response_description TEXT
);

CREATE TABLE IF NOT EXISTS dim_neighbourhoods (
    neighbourhood_id   BIGINT PRIMARY KEY,
    neighbourhood_name TEXT
);

CREATE TABLE IF NOT EXISTS fire_incidents (
    incident_id                BIGSERIAL PRIMARY KEY,
    event_number               TEXT NOT NULL,
    dispatch_year              INTEGER,
    dispatch_month             INTEGER,
    dispatch_day               INTEGER,
    dispatch_month_name        TEXT,
    dispatch_dayofweek         TEXT,
    dispatch_date              TEXT,
    dispatch_date_formatted    DATE,
    dispatch_time              TIME,
    dispatch_datetime          TIMESTAMP,
    event_close_date           TEXT,
    event_close_date_formatted DATE,
    event_close_time           TIME,
    event_close_datetime       TIMESTAMP,
    event_duration_mins        INTEGER,
    event_type_group           TEXT,
    event_description          TEXT,
    neighbourhood_id           BIGINT,
    neighbourhood_name         TEXT,
    approximate_location       TEXT,
    equipment_assigned         TEXT,
    latitude                   DOUBLE PRECISION,
    longitude                  DOUBLE PRECISION,
    geometry_point             TEXT,
    response_code              TEXT,
    event_type_id              INTEGER REFERENCES dim_event_types (event_type_id),
    response_code_id           INTEGER REFERENCES dim_response_codes (response_code_id)
);

CREATE INDEX IF NOT EXISTS idx_fire_incidents_event_number
    ON fire_incidents (event_number);
CREATE INDEX IF NOT EXISTS idx_fire_incidents_dispatch_year
    ON fire_incidents (dispatch_year);
`

// warehouseTables lists every table in load order (dimensions before facts).
var warehouseTables = []string{
	"dim_event_types",
	"dim_response_codes",
	"dim_neighbourhoods",
	"fire_incidents",
}
