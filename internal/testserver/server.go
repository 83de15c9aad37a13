// Package testserver is an in-memory fake of the operations backend used by
// end-to-end tests. It speaks the same routes and payloads as the real
// server and counts every request it serves.
package testserver

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/itops/staffdesk/pkg/api"
)

// Account is a login the fake accepts.
type Account struct {
	ID       int
	Username string
	Password string
	FullName string
	Role     string
}

// Server is the fake backend. All state is guarded by mu.
type Server struct {
	mu         sync.Mutex
	accounts   map[string]Account
	tokens     map[string]Account
	employees  []api.Employee
	assets     []api.Asset
	categories []api.Category
	tickets    []api.Ticket
	photos     map[string][]byte
	printLogs  []api.PrintLog
	zipIDs     []string
	hits       map[string]int
	nextID     int

	// employeesStatus makes GET /employees fail with this status when set.
	employeesStatus int
	employeesDelay  time.Duration

	http *httptest.Server
}

// Seeded roster shape.
const (
	ActiveEmployees   = 7
	ResignedEmployees = 3
)

// New builds a fake with a deterministic roster and one account per role.
func New(seed uint64) *Server {
	f := gofakeit.New(seed)
	s := &Server{
		accounts: make(map[string]Account),
		tokens:   make(map[string]Account),
		photos:   make(map[string][]byte),
		hits:     make(map[string]int),
		nextID:   100,
	}

	for i, role := range []string{"Admin", "Manager", "HR", "IT", "Staff"} {
		name := strings.ToLower(role)
		s.accounts[name] = Account{ID: i + 1, Username: name, Password: name + "-pass", FullName: f.Name(), Role: role}
	}
	s.accounts["root"] = Account{ID: 99, Username: "root", Password: "root-pass", FullName: "Root", Role: "Admin"}

	departments := []string{"Production", "Warehouse", "Finance", "IT"}
	for i := 0; i < ActiveEmployees+ResignedEmployees; i++ {
		e := api.Employee{
			EmployeeID:         fmt.Sprintf("E%03d", i+1),
			EmployeeName:       f.Name(),
			EmployeeStatus:     api.StatusActive,
			EmployeeDepartment: departments[i%len(departments)],
			EmployeePosition:   f.JobTitle(),
			EmployeeType:       []string{"Staff", "Worker"}[i%2],
			EmployeeGender:     f.RandomString([]string{"Male", "Female"}),
			EmployeeJoinDate:   f.DateRange(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"),
		}
		if i >= ActiveEmployees {
			e.EmployeeStatus = "Resigned"
			e.EmployeeLeftDate = f.DateRange(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)).Format("2006-01-02")
		}
		s.employees = append(s.employees, e)
	}
	s.photos["E001"] = []byte("\xff\xd8\xff\xe0fake-jpeg")

	s.categories = []api.Category{{ID: "1", Code: "PC", Name: "Desktop"}, {ID: "2", Code: "LAPTOP", Name: "Laptop"}}
	s.assets = []api.Asset{{
		ID:           "1",
		AssetCode:    "PC-001",
		Category:     "PC",
		UsageStatus:  "In Use",
		HealthStatus: "Good",
		AssignedTo: &api.Assignment{
			EmployeeID:         "E001",
			EmployeeName:       "Former Name",
			EmployeeDepartment: s.employees[0].EmployeeDepartment,
		},
	}, {
		ID:           "2",
		AssetCode:    "LT-001",
		Category:     "LAPTOP",
		UsageStatus:  "Spare",
		HealthStatus: "Good",
	}}
	s.tickets = []api.Ticket{
		{ID: "1", Title: f.Sentence(4), Status: "Open", Priority: "High", Requester: "staff"},
		{ID: "2", Title: f.Sentence(4), Status: "In Progress", Priority: "Medium", Requester: "hr"},
		{ID: "3", Title: f.Sentence(4), Status: "Resolved", Priority: "Low", Requester: "staff", ResolutionNote: "done"},
	}
	return s
}

// Start serves the fake on a local port until Close.
func (s *Server) Start() *Server {
	s.http = httptest.NewServer(s.Router())
	return s
}

// URL of the running server
func (s *Server) URL() string {
	return s.http.URL
}

// Close stops the server
func (s *Server) Close() {
	if s.http != nil {
		s.http.Close()
	}
}

// Hits returns how many requests reached method and route, e.g. "GET /employees".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// ZipRequest returns the ids asked for by the last photo ZIP request
func (s *Server) ZipRequest() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.zipIDs...)
}

// Employees returns a copy of the roster
func (s *Server) Employees() []api.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Employee(nil), s.employees...)
}

// Tickets returns a copy of the tickets
func (s *Server) Tickets() []api.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Ticket(nil), s.tickets...)
}

// PrintLogs returns the recorded print runs
func (s *Server) PrintLogs() []api.PrintLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.PrintLog(nil), s.printLogs...)
}

// SetTicketStatus changes a ticket behind the client's back.
func (s *Server) SetTicketStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID.String() == id {
			s.tickets[i].Status = status
		}
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.count)

	r.POST("/login", s.login)

	authed := r.Group("/", s.requireToken)
	authed.GET("/employees", s.listEmployees)

	authed.GET("/assets", s.listAssets)
	authed.POST("/assets", s.createAsset)
	authed.PUT("/assets/:id", s.updateAsset)
	authed.DELETE("/assets/:id", s.deleteAsset)

	authed.GET("/categories", s.listCategories)
	authed.POST("/categories", s.saveCategory)
	authed.PUT("/categories/:id", s.saveCategory)
	authed.DELETE("/categories/:id", s.deleteCategory)

	authed.GET("/tickets/manage", s.listTickets(false))
	authed.GET("/tickets/my-tickets", s.listTickets(true))
	authed.POST("/tickets", s.createTicket)
	authed.PUT("/tickets/:id", s.updateTicket)
	authed.POST("/tickets/:id/comments", s.addComment)

	authed.POST("/print/log", s.logPrint)
	authed.POST("/print/log-tool", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	authed.GET("/print/stats", s.printStats)

	authed.POST("/download-zip", s.downloadZip)
	authed.GET("/download/:id", s.downloadPhoto)
	authed.POST("/upload", s.upload)
	authed.POST("/sync-old-photos", func(c *gin.Context) { c.JSON(http.StatusOK, api.SyncResult{Synced: 2}) })
	return r
}

func (s *Server) count(c *gin.Context) {
	c.Next()
	s.mu.Lock()
	s.hits[c.Request.Method+" "+c.FullPath()]++
	s.mu.Unlock()
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (s *Server) requireToken(c *gin.Context) {
	tok := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	acct, ok := s.tokens[tok]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	c.Set("account", acct)
	c.Next()
}

func account(c *gin.Context) Account {
	v, _ := c.Get("account")
	acct, _ := v.(Account)
	return acct
}

// Expire invalidates every issued token.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]Account)
}

func (s *Server) login(c *gin.Context) {
	username, password := c.PostForm("username"), c.PostForm("password")
	s.mu.Lock()
	acct, ok := s.accounts[username]
	if ok && acct.Password == password {
		s.tokens["token-"+username] = acct
	}
	s.mu.Unlock()
	if !ok || acct.Password != password {
		detail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	c.JSON(http.StatusOK, api.LoginResponse{
		AccessToken: "token-" + username,
		TokenType:   "bearer",
		User:        api.User{ID: api.ID(strconv.Itoa(acct.ID)), Username: acct.Username, FullName: acct.FullName, Role: acct.Role},
	})
}

func (s *Server) listEmployees(c *gin.Context) {
	s.mu.Lock()
	status, delay := s.employeesStatus, s.employeesDelay
	list := append([]api.Employee(nil), s.employees...)
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	if status != 0 {
		detail(c, status, http.StatusText(status))
		return
	}
	c.JSON(http.StatusOK, api.EmployeeList{Data: list})
}

// SetEmployeesFailure makes the roster endpoint fail with status; 0 heals it.
func (s *Server) SetEmployeesFailure(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employeesStatus = status
}

// SetEmployeesDelay stalls the roster endpoint by d.
func (s *Server) SetEmployeesDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employeesDelay = d
}

func (s *Server) listAssets(c *gin.Context) {
	cat := c.Query("category")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Asset{}
	for _, a := range s.assets {
		if cat == "" || strings.EqualFold(a.Category, cat) {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createAsset(c *gin.Context) {
	var a api.Asset
	if err := c.ShouldBindJSON(&a); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = api.ID(strconv.Itoa(s.nextID))
	s.assets = append(s.assets, a)
	c.JSON(http.StatusCreated, a)
}

func (s *Server) updateAsset(c *gin.Context) {
	var a api.Asset
	if err := c.ShouldBindJSON(&a); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID.String() == c.Param("id") {
			a.ID = s.assets[i].ID
			s.assets[i] = a
			c.JSON(http.StatusOK, a)
			return
		}
	}
	detail(c, http.StatusNotFound, "Asset not found")
}

func (s *Server) deleteAsset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID.String() == c.Param("id") {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
	}
	detail(c, http.StatusNotFound, "Asset not found")
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]api.Category{}, s.categories...))
}

func (s *Server) saveCategory(c *gin.Context) {
	var cat api.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := c.Param("id"); id != "" {
		for i := range s.categories {
			if s.categories[i].ID.String() == id {
				cat.ID = s.categories[i].ID
				s.categories[i] = cat
				c.JSON(http.StatusOK, cat)
				return
			}
		}
		detail(c, http.StatusNotFound, "Category not found")
		return
	}
	s.nextID++
	cat.ID = api.ID(strconv.Itoa(s.nextID))
	s.categories = append(s.categories, cat)
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID.String() == c.Param("id") {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
	}
	detail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) listTickets(mine bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := account(c)
		if !mine && acct.Role != "Admin" && acct.Role != "Manager" {
			detail(c, http.StatusForbidden, "Not allowed")
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = 20
		}
		status := c.Query("status")

		s.mu.Lock()
		var match []api.Ticket
		for _, t := range s.tickets {
			if mine && t.Requester != acct.Username {
				continue
			}
			if status != "" && t.Status != status {
				continue
			}
			match = append(match, t)
		}
		s.mu.Unlock()

		start := (page - 1) * size
		if start > len(match) {
			start = len(match)
		}
		end := start + size
		if end > len(match) {
			end = len(match)
		}
		c.JSON(http.StatusOK, api.TicketPage{Items: append([]api.Ticket{}, match[start:end]...), Total: len(match), Page: page, Size: size})
	}
}

func (s *Server) createTicket(c *gin.Context) {
	var nt api.NewTicket
	if err := c.ShouldBindJSON(&nt); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := api.Ticket{
		ID:          api.ID(strconv.Itoa(s.nextID)),
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    nt.Priority,
		Status:      "Open",
		Requester:   account(c).Username,
	}
	s.tickets = append(s.tickets, t)
	c.JSON(http.StatusCreated, t)
}

var ticketMoves = map[string][]string{
	"Open":        {"In Progress", "Cancelled"},
	"In Progress": {"Resolved", "Cancelled"},
}

func (s *Server) updateTicket(c *gin.Context) {
	var upd api.TicketUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		t := &s.tickets[i]
		if t.ID.String() != c.Param("id") {
			continue
		}
		if upd.Status != "" {
			ok := false
			for _, to := range ticketMoves[t.Status] {
				ok = ok || to == upd.Status
			}
			if !ok {
				detail(c, http.StatusBadRequest, fmt.Sprintf("Cannot move from %s to %s", t.Status, upd.Status))
				return
			}
			t.Status = upd.Status
		}
		if upd.Priority != "" {
			t.Priority = upd.Priority
		}
		if upd.Assignee != nil {
			t.Assignee = upd.Assignee
		}
		if upd.ResolutionNote != "" {
			t.ResolutionNote = upd.ResolutionNote
		}
		c.JSON(http.StatusOK, *t)
		return
	}
	detail(c, http.StatusNotFound, "Ticket not found")
}

func (s *Server) addComment(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID.String() == c.Param("id") {
			cm := api.Comment{Author: account(c).Username, Content: body.Content, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
			s.tickets[i].Comments = append(s.tickets[i].Comments, cm)
			c.JSON(http.StatusCreated, cm)
			return
		}
	}
	detail(c, http.StatusNotFound, "Ticket not found")
}

func (s *Server) logPrint(c *gin.Context) {
	var entry api.PrintLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	s.printLogs = append(s.printLogs, entry)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) printStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.printLogs {
		total += len(l.EmployeeIDs)
	}
	c.JSON(http.StatusOK, api.PrintStats{Total: total, Today: total})
}

func (s *Server) downloadZip(c *gin.Context) {
	var body struct {
		EmployeeIDs []string `json:"employee_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	s.mu.Lock()
	s.zipIDs = append([]string(nil), body.EmployeeIDs...)
	for _, id := range body.EmployeeIDs {
		data, ok := s.photos[id]
		if !ok {
			continue
		}
		w, err := zw.Create(id + ".jpg")
		if err == nil {
			_, _ = w.Write(data)
		}
	}
	s.mu.Unlock()
	if err := zw.Close(); err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (s *Server) downloadPhoto(c *gin.Context) {
	s.mu.Lock()
	data, ok := s.photos[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusNotFound, "Photo not found")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (s *Server) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	res := api.UploadResult{Uploaded: []string{}, Skipped: []string{}}
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		id := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
		s.mu.Lock()
		s.photos[id] = data
		s.mu.Unlock()
		res.Uploaded = append(res.Uploaded, fh.Filename)
	}
	c.JSON(http.StatusOK, res)
}
