package rule

// Status is the verdict category for one rule applied to one record. Failed
// is a data-quality failure; Errored means the rule itself could not be
// evaluated for the record and is tallied separately.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Failure reasons. Distinct reasons let a report consumer tell a null value
// from an out-of-range one without re-reading the data.
const (
	ReasonNull          = "null value"
	ReasonOutOfRange    = "out of range"
	ReasonNotComparable = "not comparable"
	ReasonNotString     = "not a string"
	ReasonNoMatch       = "does not match pattern"
	ReasonDuplicate     = "duplicate key"
	ReasonUnknownKey    = "key not in reference set"
	ReasonPredicate     = "predicate returned false"
)

// RecordID locates a record: the substrate-assigned partition index plus the
// row's position in partition-local iteration order. The pair gives samples a
// stable, merge-order-independent sort key.
type RecordID struct {
	Partition int
	Row       int
}

// Less orders record IDs by (partition, row).
func (a RecordID) Less(b RecordID) bool {
	if a.Partition != b.Partition {
		return a.Partition < b.Partition
	}
	return a.Row < b.Row
}

// Outcome is the result of applying one rule to one record.
type Outcome struct {
	Rule     string
	Record   RecordID
	Status   Status
	Reason   string
	Observed any
}

func passed(name string, id RecordID) Outcome {
	return Outcome{Rule: name, Record: id, Status: StatusPassed}
}

func failed(name string, id RecordID, reason string, observed any) Outcome {
	return Outcome{Rule: name, Record: id, Status: StatusFailed, Reason: reason, Observed: observed}
}

func skipped(name string, id RecordID) Outcome {
	return Outcome{Rule: name, Record: id, Status: StatusSkipped}
}

func errored(name string, id RecordID, reason string) Outcome {
	return Outcome{Rule: name, Record: id, Status: StatusErrored, Reason: reason}
}
