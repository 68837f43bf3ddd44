package domain

import "time"

// Product is a recyclable material priced per quintal. The price is mutable;
// report items snapshot it at the moment they are weighed in.
type Product struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	PricePerQuintal float64   `json:"pricePerQuintal" db:"price_per_quintal"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Supplier is reference data for the party delivering material.
type Supplier struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	Phone          string    `json:"phone" db:"phone"`
	Representative string    `json:"representative" db:"representative"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// User is the staff member who registered a report.
type User struct {
	ID        string    `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ReportItem is one weighed line on a report. Immutable once created; the
// only mutation is removal while the parent report is still pending.
type ReportItem struct {
	ID               string    `json:"id" db:"id"`
	ReportID         string    `json:"reportId" db:"report_id"`
	ProductID        string    `json:"productId" db:"product_id"`
	Product          *Product  `json:"product,omitempty" db:"-"`
	Weight           float64   `json:"weight" db:"weight"`
	WeightUnit       string    `json:"weightUnit" db:"weight_unit"`
	WeightInQuintals float64   `json:"weightInQuintals" db:"weight_in_quintals"`
	PricePerQuintal  float64   `json:"pricePerQuintal" db:"price_per_quintal"`
	BasePrice        float64   `json:"basePrice" db:"base_price"`
	DiscountWeight   float64   `json:"discountWeight" db:"discount_weight"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// Report is a weigh-in ticket for a truckload of material.
type Report struct {
	ID           string    `json:"id" db:"id"`
	ReportDate   time.Time `json:"reportDate" db:"report_date"`
	TicketNumber string    `json:"ticketNumber" db:"ticket_number"`
	PlateNumber  string    `json:"plateNumber" db:"plate_number"`

	SupplierID string    `json:"supplierId" db:"supplier_id"`
	Supplier   *Supplier `json:"supplier,omitempty" db:"-"`

	UserID string `json:"userId" db:"user_id"`
	User   *User  `json:"user,omitempty" db:"-"`

	GrossWeight float64 `json:"grossWeight" db:"gross_weight"`
	TareWeight  float64 `json:"tareWeight" db:"tare_weight"`
	NetWeight   float64 `json:"netWeight" db:"net_weight"`

	ExtraPercentage float64 `json:"extraPercentage" db:"extra_percentage"`
	BasePrice       float64 `json:"basePrice" db:"base_price"`
	TotalPrice      float64 `json:"totalPrice" db:"total_price"`

	DriverName string      `json:"driverName" db:"driver_name"`
	State      ReportState `json:"state" db:"state"`

	Items []ReportItem `json:"items" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SystemConfig is the singleton settings row; ExtraPercentage is the global
// surcharge applied when a report is finished.
type SystemConfig struct {
	ID              string    `json:"id" db:"id"`
	ExtraPercentage float64   `json:"extraPercentage" db:"extra_percentage"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateReportInput is the step-1 header the wizard submits. UserID
// identifies the registering staff member; transport-level authentication is
// outside this service.
type CreateReportInput struct {
	ReportDate  *time.Time `json:"reportDate,omitempty"`
	SupplierID  string     `json:"supplierId"`
	PlateNumber string     `json:"plateNumber"`
	GrossWeight float64    `json:"grossWeight"`
	DriverName  string     `json:"driverName"`
	UserID      string     `json:"userId,omitempty"`
}

// CreateReportItemInput is a single line item submitted during step 2.
type CreateReportItemInput struct {
	ProductID      string  `json:"productId"`
	Weight         float64 `json:"weight"`
	WeightUnit     string  `json:"weightUnit"`
	DiscountWeight float64 `json:"discountWeight,omitempty"`
}

// FinishReportInput carries the tare weight supplied at close-out.
type FinishReportInput struct {
	TareWeight float64 `json:"tareWeight"`
}

// ReportFilter narrows report listings and exports. Search matches ticket or
// plate number.
type ReportFilter struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	SupplierID string     `json:"supplierId,omitempty"`
	ProductID  string     `json:"productId,omitempty"`
	Search     string     `json:"search,omitempty"`
	State      string     `json:"state,omitempty"`
}

// ReportPage is a paginated report listing.
type ReportPage struct {
	Data       []*Report `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// ProductSummary aggregates finished-report totals for one product.
type ProductSummary struct {
	ProductID      string  `json:"productId" db:"product_id"`
	ProductName    string  `json:"productName" db:"product_name"`
	TotalQuintals  float64 `json:"totalQuintals" db:"total_quintals"`
	TotalBasePrice float64 `json:"totalBasePrice" db:"total_base_price"`
	ItemCount      int     `json:"itemCount" db:"item_count"`
}

// IntakeSummary is the dashboard roll-up over a filter window.
type IntakeSummary struct {
	ReportCount   int              `json:"reportCount"`
	TotalQuintals float64          `json:"totalQuintals"`
	TotalAmount   float64          `json:"totalAmount"`
	Products      []ProductSummary `json:"products"`
}
