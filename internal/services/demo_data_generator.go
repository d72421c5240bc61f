package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"walletwhiz/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	hoursInDay         = 24
	biWeeklyDays       = 14
	salaryHour         = 9
	businessHoursStart = 6
	businessHoursEnd   = 24
	demoNote           = "Demo data"
)

type demoMerchant struct {
	name     string
	category string
}

type demoDataGenerator struct {
	merchants map[string][]demoMerchant
	methods   []string
	mu        sync.Mutex
	faker     *gofakeit.Faker
}

// NewDemoDataGenerator returns a generator whose output is fully determined
// by seed.
func NewDemoDataGenerator(seed int64) DemoDataGeneratorInterface {
	return &demoDataGenerator{
		merchants: initializeDemoMerchants(),
		methods:   []string{"UPI", "Credit Card", "Debit Card", "Cash", "Net Banking"},
		faker:     gofakeit.New(seed),
	}
}

// Merchant names carry the keywords the categorizer looks for.
func initializeDemoMerchants() map[string][]demoMerchant {
	pool := []demoMerchant{
		{"Swiggy order", models.CategoryFoodDining},
		{"Zomato dinner", models.CategoryFoodDining},
		{"Dominos pizza", models.CategoryFoodDining},
		{"Cafe Coffee Day", models.CategoryFoodDining},
		{"Office lunch", models.CategoryFoodDining},

		{"Uber ride", models.CategoryTransportation},
		{"Ola cab", models.CategoryTransportation},
		{"Metro card recharge", models.CategoryTransportation},
		{"Petrol pump", models.CategoryTransportation},
		{"Mall parking", models.CategoryTransportation},

		{"Amazon purchase", models.CategoryShopping},
		{"Flipkart order", models.CategoryShopping},
		{"Myntra apparel", models.CategoryShopping},
		{"Grocery store", models.CategoryShopping},

		{"Netflix subscription", models.CategoryEntertainment},
		{"Spotify premium", models.CategoryEntertainment},
		{"PVR cinema tickets", models.CategoryEntertainment},

		{"Electricity bill", models.CategoryBillsUtilities},
		{"Broadband bill", models.CategoryBillsUtilities},
		{"Mobile recharge", models.CategoryBillsUtilities},
		{"Water bill", models.CategoryBillsUtilities},

		{"Apollo pharmacy", models.CategoryHealthcare},
		{"Clinic consultation", models.CategoryHealthcare},
		{"Doctor visit", models.CategoryHealthcare},

		{"Freelance project payout", models.CategoryFreelance},
		{"Mutual fund dividend", models.CategoryInvestment},
		{"Cashback credit", models.CategoryOtherIncome},
	}

	merchants := make(map[string][]demoMerchant)
	for _, m := range pool {
		merchants[m.category] = append(merchants[m.category], m)
	}
	return merchants
}

// GenerateAmount draws a rupee amount from the range typical for the
// category.
func (g *demoDataGenerator) GenerateAmount(categoryName string) decimal.Decimal {
	minValue, maxValue := demoAmountRange(categoryName)

	g.mu.Lock()
	defer g.mu.Unlock()
	return decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(2)
}

func demoAmountRange(categoryName string) (float64, float64) {
	ranges := map[string][2]float64{
		models.CategoryFoodDining:     {80, 1500},
		models.CategoryTransportation: {40, 900},
		models.CategoryShopping:       {300, 6000},
		models.CategoryEntertainment:  {149, 1200},
		models.CategoryBillsUtilities: {300, 3500},
		models.CategoryHealthcare:     {150, 4000},
		models.CategorySalary:         {45000, 120000},
		models.CategoryFreelance:      {5000, 40000},
		models.CategoryInvestment:     {500, 10000},
		models.CategoryOtherIncome:    {50, 2000},
	}

	if r, exists := ranges[categoryName]; exists {
		return r[0], r[1]
	}
	return 100, 1000
}

// GenerateTimestamp picks a day in [start, end) and a time of day inside
// business hours.
func (g *demoDataGenerator) GenerateTimestamp(start, end time.Time) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timestamp(start, end)
}

func (g *demoDataGenerator) timestamp(start, end time.Time) time.Time {
	day := start
	if end.After(start) {
		day = g.faker.DateRange(start, end)
	}

	return time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		g.faker.Number(businessHoursStart, businessHoursEnd-1),
		g.faker.Number(0, 59),
		g.faker.Number(0, 59),
		0,
		time.UTC,
	)
}

// GenerateSalaryTransactions books a fixed salary every two weeks after start.
func (g *demoDataGenerator) GenerateSalaryTransactions(userID uuid.UUID, salary *models.Category, start, end time.Time) []models.Transaction {
	if salary == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	minValue, maxValue := demoAmountRange(salary.Name)
	amount := decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(-3)
	employer := g.faker.Company()

	transactions := make([]models.Transaction, 0)
	for current := start.Add(biWeeklyDays * hoursInDay * time.Hour); !current.After(end); current = current.Add(biWeeklyDays * hoursInDay * time.Hour) {
		categoryID := salary.ID
		transactions = append(transactions, models.Transaction{
			ID:              uuid.New(),
			UserID:          userID,
			Type:            models.TransactionTypeIncome,
			Amount:          amount,
			CategoryID:      &categoryID,
			Description:     fmt.Sprintf("Salary credit - %s", employer),
			TransactionDate: time.Date(current.Year(), current.Month(), current.Day(), salaryHour, 0, 0, 0, time.UTC),
			Notes:           demoNote,
			Tags:            models.StringList{"salary"},
			PaymentMethod:   "Net Banking",
		})
	}
	return transactions
}

// GenerateTransactions spreads count transactions over the user's categories
// between start and end, sorted by date. Categories without a known
// merchant get a generic description.
func (g *demoDataGenerator) GenerateTransactions(userID uuid.UUID, categories []models.Category, start, end time.Time, count int) []models.Transaction {
	if len(categories) == 0 || count <= 0 {
		return nil
	}

	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		g.mu.Lock()
		category := categories[g.faker.Number(0, len(categories)-1)]
		description := g.describe(category.Name)
		method := g.faker.RandomString(g.methods)
		location := g.faker.City()
		timestamp := g.timestamp(start, end)
		g.mu.Unlock()

		categoryID := category.ID
		transactions = append(transactions, models.Transaction{
			ID:              uuid.New(),
			UserID:          userID,
			Type:            category.Type,
			Amount:          g.GenerateAmount(category.Name),
			CategoryID:      &categoryID,
			Description:     description,
			TransactionDate: timestamp,
			Notes:           demoNote,
			Tags:            models.StringList{},
			Location:        location,
			PaymentMethod:   method,
		})
	}

	sortTransactionsByDate(transactions)
	return transactions
}

func (g *demoDataGenerator) describe(categoryName string) string {
	merchants := g.merchants[categoryName]
	if len(merchants) == 0 {
		return fmt.Sprintf("%s - %s", categoryName, g.faker.Company())
	}
	return merchants[g.faker.Number(0, len(merchants)-1)].name
}

func sortTransactionsByDate(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].TransactionDate.Before(transactions[j].TransactionDate)
	})
}
