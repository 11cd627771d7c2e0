package repositories

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// ErrStoreUnavailable marks infrastructure failures such as a missing table or
// a lost connection, as opposed to ordinary query errors.
var ErrStoreUnavailable = errors.New("store unavailable")

// unavailable reports whether err means the database cannot serve requests at all.
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "57", "53": // connection_exception, operator_intervention, insufficient_resources
			return true
		}
		// undefined_table, invalid_catalog_name
		return pqErr.Code == "42P01" || pqErr.Code == "3D000"
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func wrapUnavailable(err error) error {
	if unavailable(err) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}
