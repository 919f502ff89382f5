package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Decision is the business answer extracted from an upstream body.
type Decision struct {
	// Eligible is true when the first proposal profile allows issuance.
	Eligible bool
	// Profiles is the number of proposal profiles returned.
	Profiles int
}

// envelope is the upstream response body:
//
//	{ "erro": bool, "objeto": { "perfilProposta": [{ "permiteEmissao": bool }] | null } }
type envelope struct {
	Erro   flag           `json:"erro"`
	Objeto *operationData `json:"objeto"`
}

type operationData struct {
	PerfilProposta []proposalProfile `json:"perfilProposta"`
}

type proposalProfile struct {
	PermiteEmissao flag `json:"permiteEmissao"`
}

// flag decodes a loosely typed upstream boolean. Besides true/false it
// accepts numbers (non-zero is true), strings ("true" and "1" are true)
// and null (false).
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = true
		return nil
	case bytes.Equal(data, []byte("false")):
		*f = false
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flag(s == "true" || s == "1")
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid boolean value %s", data)
	}
	*f = flag(n != 0)
	return nil
}

// decision maps the operation data to a Decision. A nil or empty profile
// list is an ineligible answer, not an error.
func (d *operationData) decision() *Decision {
	if d == nil || len(d.PerfilProposta) == 0 {
		return &Decision{}
	}
	return &Decision{
		Eligible: bool(d.PerfilProposta[0].PermiteEmissao),
		Profiles: len(d.PerfilProposta),
	}
}
