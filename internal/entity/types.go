package entity

import (
	"github.com/shopspring/decimal"

	"github.com/five82/ams/internal/reconcile"
)

// Row is implemented by every entity the console lists and edits.
type Row interface {
	// Key is the record's primary key.
	Key() string
	// Label names the record in notifications and confirmations.
	Label() string
	// Values returns the form prefill keyed by payload key.
	Values() map[string]string
}

type Asset struct {
	ID             string          `mapstructure:"id"`
	Name           string          `mapstructure:"asset_name"`
	CategoryID     string          `mapstructure:"category_id"`
	Status         string          `mapstructure:"status"`
	PurchaseDate   string          `mapstructure:"purchase_date"`
	PurchaseCost   decimal.Decimal `mapstructure:"purchase_cost"`
	LocationID     string          `mapstructure:"location_id"`
	SupplierID     string          `mapstructure:"supplier_id"`
	WarrantyExpiry string          `mapstructure:"warranty_expiry"`
	SerialNumber   string          `mapstructure:"serial_number"`
}

var AssetSpec = reconcile.Spec{
	"id":              {"asset_id", "id"},
	"asset_name":      {"asset_name", "name"},
	"category_id":     {"category_id", "category"},
	"status":          {"status"},
	"purchase_date":   {"purchase_date"},
	"purchase_cost":   {"purchase_cost", "purchasePrice"},
	"location_id":     {"location_id", "location"},
	"supplier_id":     {"supplier_id", "supplier"},
	"warranty_expiry": {"warranty_expiry"},
	"serial_number":   {"serial_number"},
}

func (a Asset) Key() string   { return a.ID }
func (a Asset) Label() string { return a.Name }

func (a Asset) Values() map[string]string {
	return map[string]string{
		"asset_name":      a.Name,
		"category_id":     a.CategoryID,
		"status":          a.Status,
		"purchase_date":   Day(a.PurchaseDate),
		"purchase_cost":   amount(a.PurchaseCost),
		"location_id":     a.LocationID,
		"supplier_id":     a.SupplierID,
		"warranty_expiry": Day(a.WarrantyExpiry),
		"serial_number":   a.SerialNumber,
	}
}

type User struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Email      string `mapstructure:"email"`
	Phone      string `mapstructure:"phone"`
	Department string `mapstructure:"department"`
	Occupation string `mapstructure:"occupation"`
	NIN        string `mapstructure:"nin"`
	Status     string `mapstructure:"status"`
}

var UserSpec = reconcile.Spec{
	"id":         {"user_id", "id"},
	"name":       {"name"},
	"email":      {"email"},
	"phone":      {"phone"},
	"department": {"department"},
	"occupation": {"occupation", "position"},
	"nin":        {"nin"},
	"status":     {"status"},
}

func (u User) Key() string   { return u.ID }
func (u User) Label() string { return u.Name }

func (u User) Values() map[string]string {
	return map[string]string{
		"name":       u.Name,
		"email":      u.Email,
		"phone":      u.Phone,
		"department": u.Department,
		"occupation": u.Occupation,
		"nin":        u.NIN,
		"status":     u.Status,
	}
}

type Assignment struct {
	ID           string `mapstructure:"id"`
	AssetID      string `mapstructure:"asset"`
	UserID       string `mapstructure:"user"`
	AssignedDate string `mapstructure:"assigned_date"`
	ReturnDate   string `mapstructure:"return_date"`
	Status       string `mapstructure:"status"`
	Description  string `mapstructure:"description"`
	ApprovedBy   string `mapstructure:"approved_by"`
}

var AssignmentSpec = reconcile.Spec{
	"id":            {"assignment_id", "id"},
	"asset":         {"asset", "asset_id", "assetId"},
	"user":          {"user", "user_id", "userId"},
	"assigned_date": {"assigned_date"},
	"return_date":   {"return_date"},
	"status":        {"status"},
	"description":   {"description", "notes"},
	"approved_by":   {"approved_by"},
}

func (a Assignment) Key() string   { return a.ID }
func (a Assignment) Label() string { return "assignment " + a.ID }

func (a Assignment) Values() map[string]string {
	return map[string]string{
		"asset":         a.AssetID,
		"user":          a.UserID,
		"assigned_date": Day(a.AssignedDate),
		"return_date":   Day(a.ReturnDate),
		"status":        a.Status,
		"description":   a.Description,
		"approved_by":   a.ApprovedBy,
	}
}

type Maintenance struct {
	ID          string          `mapstructure:"id"`
	AssetID     string          `mapstructure:"asset"`
	Date        string          `mapstructure:"maintenance_date"`
	Description string          `mapstructure:"description"`
	Cost        decimal.Decimal `mapstructure:"cost"`
	StaffID     string          `mapstructure:"staff"`
	PerformedBy string          `mapstructure:"performed_by"`
	Status      string          `mapstructure:"status"`
}

// MaintenanceSpec accepts the field spellings of both the API and the legacy
// local cache.
var MaintenanceSpec = reconcile.Spec{
	"id":               {"maintenance_id", "id"},
	"asset":            {"asset", "asset_id", "assetId"},
	"maintenance_date": {"maintenance_date", "scheduledDate", "maintenanceDate", "completedDate", "date"},
	"description":      {"description", "notes"},
	"cost":             {"cost"},
	"staff":            {"staff", "staff_id", "staffId", "m_staff_id"},
	"performed_by":     {"performed_by", "performedBy"},
	"status":           {"status"},
}

func (m Maintenance) Key() string   { return m.ID }
func (m Maintenance) Label() string { return "maintenance record " + m.ID }

func (m Maintenance) Values() map[string]string {
	return map[string]string{
		"asset":            m.AssetID,
		"maintenance_date": Day(m.Date),
		"description":      m.Description,
		"cost":             amount(m.Cost),
		"staff":            m.StaffID,
		"performed_by":     m.PerformedBy,
	}
}

type Staff struct {
	ID             string `mapstructure:"id"`
	Name           string `mapstructure:"name"`
	Phone          string `mapstructure:"phone"`
	Email          string `mapstructure:"email"`
	Specialization string `mapstructure:"specialization"`
}

var StaffSpec = reconcile.Spec{
	"id":             {"m_staff_id", "staff_id", "id"},
	"name":           {"name"},
	"phone":          {"phone"},
	"email":          {"email"},
	"specialization": {"specialization"},
}

func (s Staff) Key() string   { return s.ID }
func (s Staff) Label() string { return s.Name }

func (s Staff) Values() map[string]string {
	return map[string]string{
		"name":           s.Name,
		"phone":          s.Phone,
		"email":          s.Email,
		"specialization": s.Specialization,
	}
}

type Disposal struct {
	ID      string          `mapstructure:"id"`
	AssetID string          `mapstructure:"asset"`
	Date    string          `mapstructure:"disposal_date"`
	Value   decimal.Decimal `mapstructure:"disposal_value"`
	BuyerID string          `mapstructure:"buyer"`
	Reason  string          `mapstructure:"reason"`
}

var DisposalSpec = reconcile.Spec{
	"id":             {"disposal_id", "id"},
	"asset":          {"asset", "asset_id"},
	"disposal_date":  {"disposal_date"},
	"disposal_value": {"disposal_value"},
	"buyer":          {"buyer", "buyer_id"},
	"reason":         {"reason"},
}

func (d Disposal) Key() string   { return d.ID }
func (d Disposal) Label() string { return "disposal " + d.ID }

func (d Disposal) Values() map[string]string {
	return map[string]string{
		"asset":          d.AssetID,
		"disposal_date":  Day(d.Date),
		"disposal_value": amount(d.Value),
		"buyer":          d.BuyerID,
		"reason":         d.Reason,
	}
}

type Valuation struct {
	ID           string          `mapstructure:"id"`
	AssetID      string          `mapstructure:"asset"`
	Date         string          `mapstructure:"valuation_date"`
	Method       string          `mapstructure:"method"`
	InitialValue decimal.Decimal `mapstructure:"initial_value"`
	CurrentValue decimal.Decimal `mapstructure:"current_value"`
}

var ValuationSpec = reconcile.Spec{
	"id":             {"valuation_id", "id"},
	"asset":          {"asset", "asset_id"},
	"valuation_date": {"valuation_date"},
	"method":         {"method"},
	"initial_value":  {"initial_value"},
	"current_value":  {"current_value"},
}

func (v Valuation) Key() string   { return v.ID }
func (v Valuation) Label() string { return "valuation " + v.ID }

func (v Valuation) Values() map[string]string {
	return map[string]string{
		"asset":          v.AssetID,
		"valuation_date": Day(v.Date),
		"method":         v.Method,
		"initial_value":  amount(v.InitialValue),
		"current_value":  amount(v.CurrentValue),
	}
}

type Supplier struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Phone     string `mapstructure:"phone"`
	Email     string `mapstructure:"email"`
	Address   string `mapstructure:"address"`
	CreatedAt string `mapstructure:"created_at"`
}

var SupplierSpec = reconcile.Spec{
	"id":         {"supplier_id", "id"},
	"name":       {"name"},
	"phone":      {"phone"},
	"email":      {"email"},
	"address":    {"address"},
	"created_at": {"created_at", "created", "added_at"},
}

func (s Supplier) Key() string   { return s.ID }
func (s Supplier) Label() string { return s.Name }

func (s Supplier) Values() map[string]string {
	return map[string]string{
		"name":    s.Name,
		"phone":   s.Phone,
		"email":   s.Email,
		"address": s.Address,
	}
}

type Location struct {
	ID                   string `mapstructure:"id"`
	Building             string `mapstructure:"building"`
	PostalAddress        string `mapstructure:"postal_address"`
	GeographicalLocation string `mapstructure:"geographical_location"`
	CreatedAt            string `mapstructure:"created_at"`
}

var LocationSpec = reconcile.Spec{
	"id":                    {"location_id", "id"},
	"building":              {"building"},
	"postal_address":        {"postal_address"},
	"geographical_location": {"geographical_location"},
	"created_at":            {"created_at", "created", "added_at"},
}

func (l Location) Key() string { return l.ID }

// Label is the building, else the geographical location, else "Loc <id>".
func (l Location) Label() string {
	switch {
	case l.Building != "":
		return l.Building
	case l.GeographicalLocation != "":
		return l.GeographicalLocation
	default:
		return "Loc " + l.ID
	}
}

func (l Location) Values() map[string]string {
	return map[string]string{
		"building":              l.Building,
		"postal_address":        l.PostalAddress,
		"geographical_location": l.GeographicalLocation,
	}
}

type Category struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"category_name"`
	Description string `mapstructure:"description"`
	CreatedAt   string `mapstructure:"created_at"`
}

var CategorySpec = reconcile.Spec{
	"id":            {"category_id", "id"},
	"category_name": {"category_name", "name"},
	"description":   {"description"},
	"created_at":    {"created_at", "created", "added_at"},
}

func (c Category) Key() string   { return c.ID }
func (c Category) Label() string { return c.Name }

func (c Category) Values() map[string]string {
	return map[string]string{
		"category_name": c.Name,
		"description":   c.Description,
	}
}

type Buyer struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Phone   string `mapstructure:"phone"`
	Email   string `mapstructure:"email"`
	Address string `mapstructure:"address"`
	TIN     string `mapstructure:"tin"`
}

var BuyerSpec = reconcile.Spec{
	"id":      {"buyer_id", "id"},
	"name":    {"name"},
	"phone":   {"phone"},
	"email":   {"email"},
	"address": {"address"},
	"tin":     {"tin"},
}

func (b Buyer) Key() string   { return b.ID }
func (b Buyer) Label() string { return b.Name }

func (b Buyer) Values() map[string]string {
	return map[string]string{
		"name":    b.Name,
		"phone":   b.Phone,
		"email":   b.Email,
		"address": b.Address,
		"tin":     b.TIN,
	}
}
