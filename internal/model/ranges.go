package model

// VitalRange is the declared plausible range for one vital sign. A matched
// value outside its range is kept on the record and flagged, never dropped.
type VitalRange struct {
	Min float64
	Max float64
}

// PlausibleRanges holds the physiological ranges per vital field, keyed by
// the field names used in warning codes.
var PlausibleRanges = map[string]VitalRange{
	"blood_pressure_systolic":  {Min: 70, Max: 250},
	"blood_pressure_diastolic": {Min: 40, Max: 150},
	"heart_rate":               {Min: 20, Max: 220},
	"temperature":              {Min: 30, Max: 45},
	"spo2":                     {Min: 0, Max: 100},
}

// InRange reports whether v is plausible for the named vital field.
// Unknown fields are considered in range.
func InRange(field string, v float64) bool {
	r, ok := PlausibleRanges[field]
	if !ok {
		return true
	}
	return v >= r.Min && v <= r.Max
}
