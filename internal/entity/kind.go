package entity

// FieldKind controls how a form value is parsed into a request payload.
type FieldKind int

const (
	Text FieldKind = iota
	Number
	Decimal
	Date
	Choice
	// Ref is a foreign key entered as the referenced record's id.
	Ref
)

// Field describes one form input. Key is the payload key the server
// validates, so field errors map straight back to inputs.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
	Choices  []string
	// Ref names the resource a Ref field points at.
	Ref string
	// Default prefills the input on create.
	Default string
}

// Kind describes one REST resource as the console edits it.
type Kind struct {
	Resource string
	Singular string
	Plural   string
	Title    string
	Fields   []Field
	// Priority orders fields for focus after a validation failure.
	Priority []string
}

// Labels returns the field labels keyed by payload key.
func (k Kind) Labels() map[string]string {
	out := make(map[string]string, len(k.Fields))
	for _, f := range k.Fields {
		out[f.Key] = f.Label
	}
	return out
}

// Field returns the field with key.
func (k Kind) Field(key string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

var (
	assetStatuses      = []string{"Active", "Inactive", "Maintenance", "Disposed"}
	userStatuses       = []string{"Active", "Inactive"}
	assignmentStatuses = []string{"Active", "Pending", "Returned", "Overdue", "Lost"}
)

var (
	AssetKind = Kind{
		Resource: "assets", Singular: "asset", Plural: "assets", Title: "Assets",
		Fields: []Field{
			{Key: "asset_name", Label: "Name", Required: true},
			{Key: "category_id", Label: "Category", Kind: Ref, Ref: "categories"},
			{Key: "status", Label: "Status", Kind: Choice, Choices: assetStatuses, Default: "Active"},
			{Key: "purchase_date", Label: "Purchase Date", Kind: Date},
			{Key: "purchase_cost", Label: "Purchase Cost", Kind: Decimal},
			{Key: "location_id", Label: "Location", Kind: Ref, Ref: "locations"},
			{Key: "supplier_id", Label: "Supplier", Kind: Ref, Ref: "suppliers"},
			{Key: "warranty_expiry", Label: "Warranty Expiry", Kind: Date},
			{Key: "serial_number", Label: "Serial Number"},
		},
		Priority: []string{"asset_name", "category_id", "status", "purchase_date", "purchase_cost"},
	}

	UserKind = Kind{
		Resource: "users", Singular: "user", Plural: "users", Title: "Users",
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone"},
			{Key: "department", Label: "Department"},
			{Key: "occupation", Label: "Position"},
			{Key: "nin", Label: "NIN"},
			{Key: "status", Label: "Status", Kind: Choice, Choices: userStatuses, Default: "Active"},
		},
		Priority: []string{"name", "email", "phone", "department", "occupation", "nin", "status"},
	}

	AssignmentKind = Kind{
		Resource: "assignments", Singular: "assignment", Plural: "assignments", Title: "Assignments",
		Fields: []Field{
			{Key: "asset", Label: "Asset", Kind: Ref, Ref: "assets", Required: true},
			{Key: "user", Label: "User", Kind: Ref, Ref: "users", Required: true},
			{Key: "assigned_date", Label: "Assigned Date", Kind: Date},
			{Key: "return_date", Label: "Return Date", Kind: Date},
			{Key: "status", Label: "Status", Kind: Choice, Choices: assignmentStatuses, Default: "Active"},
			{Key: "description", Label: "Description"},
			{Key: "approved_by", Label: "Approved By"},
		},
		Priority: []string{"asset", "user", "status", "assigned_date"},
	}

	MaintenanceKind = Kind{
		Resource: "maintenance", Singular: "maintenance record", Plural: "maintenance records", Title: "Maintenance",
		Fields: []Field{
			{Key: "asset", Label: "Asset", Kind: Ref, Ref: "assets", Required: true},
			{Key: "maintenance_date", Label: "Date", Kind: Date},
			{Key: "description", Label: "Description"},
			{Key: "cost", Label: "Cost", Kind: Decimal},
			{Key: "staff", Label: "Staff", Kind: Ref, Ref: "maintenance-staff"},
			{Key: "performed_by", Label: "Performed By"},
		},
		Priority: []string{"asset", "maintenance_date", "staff", "cost"},
	}

	StaffKind = Kind{
		Resource: "maintenance-staff", Singular: "staff member", Plural: "staff members", Title: "Maintenance Staff",
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "phone", Label: "Phone"},
			{Key: "email", Label: "Email"},
			{Key: "specialization", Label: "Specialization"},
		},
		Priority: []string{"name", "email", "phone", "specialization"},
	}

	DisposalKind = Kind{
		Resource: "disposals", Singular: "disposal", Plural: "disposals", Title: "Disposals",
		Fields: []Field{
			{Key: "asset", Label: "Asset", Kind: Ref, Ref: "assets", Required: true},
			{Key: "disposal_date", Label: "Disposal Date", Kind: Date},
			{Key: "disposal_value", Label: "Disposal Value", Kind: Decimal},
			{Key: "buyer", Label: "Buyer", Kind: Ref, Ref: "buyers"},
			{Key: "reason", Label: "Reason"},
		},
		Priority: []string{"asset", "disposal_date", "disposal_value", "buyer"},
	}

	ValuationKind = Kind{
		Resource: "valuations", Singular: "valuation", Plural: "valuations", Title: "Valuations",
		Fields: []Field{
			{Key: "asset", Label: "Asset", Kind: Ref, Ref: "assets", Required: true},
			{Key: "valuation_date", Label: "Valuation Date", Kind: Date},
			{Key: "method", Label: "Method"},
			{Key: "initial_value", Label: "Initial Value", Kind: Decimal},
			{Key: "current_value", Label: "Current Value", Kind: Decimal},
		},
		Priority: []string{"asset", "valuation_date", "initial_value", "current_value"},
	}

	SupplierKind = Kind{
		Resource: "suppliers", Singular: "supplier", Plural: "suppliers", Title: "Suppliers",
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "phone", Label: "Phone"},
			{Key: "email", Label: "Email"},
			{Key: "address", Label: "Address"},
		},
		Priority: []string{"name", "email", "phone", "address"},
	}

	LocationKind = Kind{
		Resource: "locations", Singular: "location", Plural: "locations", Title: "Locations",
		Fields: []Field{
			{Key: "building", Label: "Building"},
			{Key: "postal_address", Label: "Postal Address"},
			{Key: "geographical_location", Label: "Geographical Location"},
		},
		Priority: []string{"building", "postal_address", "geographical_location"},
	}

	CategoryKind = Kind{
		Resource: "categories", Singular: "category", Plural: "categories", Title: "Categories",
		Fields: []Field{
			{Key: "category_name", Label: "Name", Required: true},
			{Key: "description", Label: "Description"},
		},
		Priority: []string{"category_name", "description"},
	}

	BuyerKind = Kind{
		Resource: "buyers", Singular: "buyer", Plural: "buyers", Title: "Buyers",
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "phone", Label: "Phone"},
			{Key: "email", Label: "Email"},
			{Key: "address", Label: "Address"},
			{Key: "tin", Label: "TIN"},
		},
		Priority: []string{"name", "email", "phone", "tin"},
	}
)
