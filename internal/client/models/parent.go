package models

// PaymentStatus is the lifecycle state of a monthly tuition payment.
type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "PAID"
	PaymentInit PaymentStatus = "INIT"
)

// Payment is one monthly transport fee of a student. Dates are kept as the
// backend sends them; see payments.ParseDate.
type Payment struct {
	ID                string        `json:"id"`
	PaymentCode       string        `json:"paymentCode"`
	ExternalReference string        `json:"externalReference"`
	MonthAmount       float64       `json:"monthAmount"`
	Details           *string       `json:"details"`
	IsMandatory       bool          `json:"isMandatory"`
	DueDate           string        `json:"duetDate"`
	PaymentDate       string        `json:"paymentDate"`
	AgenceCode        string        `json:"agenceCode"`
	AgentCode         string        `json:"agentCode"`
	Status            PaymentStatus `json:"status"`
}

type Student struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	FirstNameArab     string    `json:"firstNameArab"`
	LastNameArab      string    `json:"lastNameArab"`
	MassarCode        string    `json:"massarCode"`
	Class             string    `json:"class"`
	Gender            string    `json:"gender"`
	BirthDate         string    `json:"birthDate"`
	Email             string    `json:"email"`
	PhotoID           *string   `json:"photoId"`
	Photo             string    `json:"photo"`
	SchoolYear        string    `json:"schoolYear"`
	Status            string    `json:"status"`
	EndStation        int       `json:"endStation"`
	ArrivalStart      string    `json:"arrivalStart"`
	ArrivalEnd        string    `json:"arrivalEnd"`
	LastPaymentPeriod string    `json:"lastPaymentPeriod"`
	NFCCardID         string    `json:"nfcCardID"`
	NFCCardUID        string    `json:"nfcCardUID"`
	NFCCardNumber     string    `json:"nfcCardNumber"`
	PaymentDetails    []Payment `json:"paymentDetails"`
}

// FullName returns the Latin or Arabic name depending on arabic.
func (s Student) FullName(arabic bool) string {
	if arabic && (s.FirstNameArab != "" || s.LastNameArab != "") {
		return joinName(s.FirstNameArab, s.LastNameArab)
	}
	return joinName(s.FirstName, s.LastName)
}

type Circuit struct {
	ID                int     `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	EstimatedDuration string  `json:"estimatedDuration"`
	Distance          float64 `json:"distance"`
	MapData           string  `json:"mapData"`
	Color             string  `json:"color"`
	StartStationID    int     `json:"startStationId"`
	EndStationID      int     `json:"endStationId"`
	IsActive          bool    `json:"isActive"`
	StartStation      string  `json:"startStation"`
	EndStation        string  `json:"endStation"`
}

// Child pairs a student with the circuit that carries them.
type Child struct {
	Student Student `json:"student"`
	Circuit Circuit `json:"circuit"`
}

type Family struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	FullNameArab string `json:"fullNameArab"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Address      string `json:"address"`
	CreatedOn    string `json:"createdOn"`
	UpdatedOn    string `json:"updatedOn"`
}

// ParentDetails is the payload of GET /api/parent/{parentId}/circuit/details.
type ParentDetails struct {
	Parent   Family  `json:"parent"`
	Children []Child `json:"childrens"`
}

// StudentSummary is the short student record of /api/parent/{id}/students.
type StudentSummary struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FirstNameArab string `json:"firstNameArab"`
	LastNameArab  string `json:"lastNameArab"`
	MassarCode    string `json:"massarCode"`
	SchoolID      string `json:"schoolId"`
	SchoolName    string `json:"schoolName"`
	CommuneID     int    `json:"communeId"`
}

// Trip is a scheduled bus run.
type Trip struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	CircuitID    int    `json:"circuitId"`
	CircuitName  string `json:"circuitName"`
	DriverID     string `json:"driverId"`
	DriverName   string `json:"driverName"`
	VehicleID    string `json:"vehicleId"`
	LicensePlate string `json:"licensePlate"`
	NbrStudent   int    `json:"nbrStudent"`
	TotalStudent int    `json:"totalStudent"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
}

// Document is a file returned inline as base64.
type Document struct {
	FileName      string `json:"fileName"`
	ContentType   string `json:"contentType"`
	Base64Content string `json:"base64Content"`
	FileSize      int64  `json:"fileSize"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
