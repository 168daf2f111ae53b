package domain

// Operation names the externally visible secret operations.
// Values are used as metric and log labels.
type Operation string

const (
	OperationStoreSecret   Operation = "storeSecret"
	OperationGetSecretMeta Operation = "getSecretMeta"
	OperationRevealSecret  Operation = "revealSecret"
)

// Operations lists every Operation.
var Operations = []Operation{
	OperationStoreSecret,
	OperationGetSecretMeta,
	OperationRevealSecret,
}

// IsValid reports whether o is a known operation.
func (o Operation) IsValid() bool {
	switch o {
	case OperationStoreSecret, OperationGetSecretMeta, OperationRevealSecret:
		return true
	}
	return false
}

func (o Operation) String() string {
	return string(o)
}
