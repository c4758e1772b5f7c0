package domain

// CostKind is a closed enum of billing models. An empty value on an
// assignment means "no override, fall back to the user's default rate".
type CostKind string

const (
	CostKindHourly = CostKind("hourly")
	CostKindTask   = CostKind("task")
)

func (k CostKind) IsValid() bool {
	return k == CostKindHourly || k == CostKindTask
}
