package model

import "github.com/rotisserie/eris"

func errMissing(field string) error {
	return eris.Errorf("model: missing required field %q", field)
}

func errRange(field string, value any) error {
	return eris.Errorf("model: field %q out of range: %v", field, value)
}
