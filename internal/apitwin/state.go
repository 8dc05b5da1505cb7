package apitwin

import (
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util/atomicwrite"
)

// LoadStateFile lee un seed o snapshot JSON.
func LoadStateFile(path string) (store.State, error) {
	var st store.State
	err := atomicwrite.ReadJSON(path, &st)
	return st, err
}

// SaveStateFile escribe el snapshot (con secretos) con permisos 0600.
func SaveStateFile(path string, st store.State) error {
	return atomicwrite.WriteJSON(path, st, 0o600)
}
