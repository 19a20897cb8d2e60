package homework

// Status is the review state reported by the status API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := verdicts[s]
	return ok
}

// Verdict returns the human sentence for s ("" for unknown statuses).
func (s Status) Verdict() string { return verdicts[s] }

// RawResponse is a syntactically valid JSON body as returned by the status API.
// Its shape is unchecked until it passes ResponseValidator.
type RawResponse []byte

// Record is one entry of the "homeworks" list.
type Record struct {
	Name   string `json:"homework_name" validate:"required"`
	Status Status `json:"status" validate:"required,oneof=approved reviewing rejected"`
}

// StatusResponse is a validated status API answer.
type StatusResponse struct {
	Homeworks   []Record
	CurrentDate int64
}

// Latest returns the most recent record (the API lists newest first).
func (r StatusResponse) Latest() (Record, bool) {
	if len(r.Homeworks) == 0 {
		return Record{}, false
	}
	return r.Homeworks[0], true
}

// FormatMessage renders the chat notification for a status change.
func FormatMessage(name string, status Status) string {
	return `Изменился статус проверки работы "` + name + `". ` + status.Verdict()
}
