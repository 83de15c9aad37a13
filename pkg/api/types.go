package api

import (
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// ID accepts both numeric and string identifiers from the backend.
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Auth

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Employees

// Employee is one roster row. Dates are kept as the raw strings the backend
// sends; pkg/dates interprets them.
type Employee struct {
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	EmployeeStatus     string  `json:"employee_status"`
	EmployeeDepartment string  `json:"employee_department"`
	EmployeePosition   string  `json:"employee_position"`
	EmployeeType       string  `json:"employee_type"`
	EmployeeGender     string  `json:"employee_gender"`
	EmployeeJoinDate   string  `json:"employee_join_date"`
	EmployeeLeftDate   string  `json:"employee_left_date"`
	MaternityType      string  `json:"maternity_type"`
	MaternityBegin     string  `json:"maternity_begin"`
	MaternityEnd       string  `json:"maternity_end"`
	ContractType       string  `json:"contract_type"`
	ContractStart      string  `json:"contract_start"`
	ContractEnd        string  `json:"contract_end"`
	LastPrintedAt      *string `json:"last_printed_at"`
}

const StatusActive = "Active"

// IsActive reports whether the employee is currently employed.
func (e Employee) IsActive() bool {
	return e.EmployeeStatus == StatusActive
}

type EmployeeList struct {
	Data []Employee `json:"data"`
}

// Assets

type Specs struct {
	CPU       string `json:"cpu"`
	RAM       string `json:"ram"`
	Storage   string `json:"storage"`
	Mainboard string `json:"mainboard"`
}

type Software struct {
	OS     string `json:"os"`
	Office string `json:"office"`
}

// Assignment is a snapshot of the owner at assignment time. Either the
// employee fields or ExternalName are set, never both.
type Assignment struct {
	EmployeeID         string `json:"employee_id,omitempty"`
	EmployeeName       string `json:"employee_name,omitempty"`
	EmployeeDepartment string `json:"employee_department,omitempty"`
	ExternalName       string `json:"external_name,omitempty"`
	ExternalNote       string `json:"external_note,omitempty"`
}

type Asset struct {
	ID           ID          `json:"id,omitempty"`
	AssetCode    string      `json:"asset_code"`
	Type         string      `json:"type"`
	Category     string      `json:"category"`
	Specs        Specs       `json:"specs"`
	Software     Software    `json:"software"`
	Monitor      string      `json:"monitor"`
	UsageStatus  string      `json:"usage_status"`
	HealthStatus string      `json:"health_status"`
	AssignedTo   *Assignment `json:"assigned_to"`
}

type Category struct {
	ID   ID     `json:"id,omitempty"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Tickets

type Comment struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Ticket struct {
	ID             ID        `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Requester      string    `json:"requester"`
	Assignee       *string   `json:"assignee"`
	ResolutionNote string    `json:"resolution_note"`
	Comments       []Comment `json:"comments"`
	CreatedAt      string    `json:"created_at,omitempty"`
}

type TicketPage struct {
	Items []Ticket `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Size  int      `json:"size"`
}

type TicketUpdate struct {
	Status         string  `json:"status,omitempty"`
	Priority       string  `json:"priority,omitempty"`
	Assignee       *string `json:"assignee,omitempty"`
	ResolutionNote string  `json:"resolution_note,omitempty"`
}

type NewTicket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type TicketQuery struct {
	Status string
	Page   int
	Size   int
}

// Printing and photos

type PrintLog struct {
	EmployeeIDs []string `json:"employee_ids"`
	PrintedBy   string   `json:"printed_by,omitempty"`
	Layout      string   `json:"layout,omitempty"`
}

type ToolPrintLog struct {
	Tool  string `json:"tool"`
	Count int    `json:"count"`
}

type PrintStats struct {
	Total         int            `json:"total"`
	Today         int            `json:"today"`
	ByDepartment  map[string]int `json:"by_department,omitempty"`
	LastPrintedAt string         `json:"last_printed_at,omitempty"`
}

type UploadResult struct {
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
}

type SyncResult struct {
	Synced int `json:"synced"`
}
