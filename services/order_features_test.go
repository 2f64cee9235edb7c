package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/ecotrade/ecotrade-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type orderFeatureContext struct {
	db       *gorm.DB
	service  *OrderService
	users    map[string]*models.User
	products map[string]*models.Product
	order    *OrderDTO
	err      error
}

func (c *orderFeatureContext) reset() error {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	c.db = db
	c.service = NewOrderService(db, zap.NewNop(), nil, false)
	c.users = map[string]*models.User{}
	c.products = map[string]*models.Product{}
	c.order = nil
	c.err = nil
	return nil
}

func (c *orderFeatureContext) close() {
	if c.db == nil {
		return
	}
	if sqlDB, err := c.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (c *orderFeatureContext) aUserWithEcoPoints(name string, points int) error {
	user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Name: name, EcoPoints: points}
	if err := c.db.Create(user).Error; err != nil {
		return err
	}
	c.users[name] = user
	return nil
}

func (c *orderFeatureContext) aProductWithStock(name string, stock int) error {
	product := &models.Product{
		Name: name, Description: name, Price: decimal.NewFromInt(10),
		Stock: stock, Category: models.CategoryPlants, IsPlant: true,
	}
	if err := c.db.Create(product).Error; err != nil {
		return err
	}
	c.products[name] = product
	return nil
}

func (c *orderFeatureContext) place(user string, qty int, product string, earned *int, used int) error {
	u, ok := c.users[user]
	if !ok {
		return fmt.Errorf("unknown user %q", user)
	}
	p, ok := c.products[product]
	if !ok {
		return fmt.Errorf("unknown product %q", product)
	}
	c.order, c.err = c.service.Create(CreateOrderInput{
		UserID:          u.ID,
		Items:           []OrderItemInput{{ProductID: p.ID, Quantity: qty}},
		EcoPointsEarned: earned,
		EcoPointsUsed:   used,
	})
	return nil
}

func (c *orderFeatureContext) userOrders(user string, qty int, product string) error {
	if err := c.place(user, qty, product, nil, 0); err != nil {
		return err
	}
	return c.err
}

func (c *orderFeatureContext) userTriesToOrder(user string, qty int, product string) error {
	return c.place(user, qty, product, nil, 0)
}

func (c *orderFeatureContext) userOrdersEarning(user string, qty int, product string, points int) error {
	if err := c.place(user, qty, product, &points, 0); err != nil {
		return err
	}
	return c.err
}

func (c *orderFeatureContext) userOrdersUsing(user string, qty int, product string, points int) error {
	if err := c.place(user, qty, product, nil, points); err != nil {
		return err
	}
	return c.err
}

func (c *orderFeatureContext) apply(action string) error {
	if c.order == nil {
		return errors.New("no order has been placed")
	}
	var order *OrderDTO
	var err error
	switch action {
	case "confirm", "confirmed":
		order, err = c.service.Confirm(c.order.ID)
	case "ship", "shipped":
		order, err = c.service.Ship(c.order.ID)
	case "deliver", "delivered":
		order, err = c.service.Deliver(c.order.ID)
	case "cancel", "cancelled":
		order, err = c.service.Cancel(c.order.ID)
	case "delete", "deleted":
		err = c.service.Delete(c.order.ID)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	c.err = err
	if order != nil {
		c.order = order
	}
	return nil
}

func (c *orderFeatureContext) theOrderIs(action string) error {
	if err := c.apply(action); err != nil {
		return err
	}
	return c.err
}

func (c *orderFeatureContext) iTryTo(action string) error {
	return c.apply(action)
}

func (c *orderFeatureContext) theOrderStatusIs(status string) error {
	got, err := c.service.Get(c.order.ID)
	if err != nil {
		return err
	}
	if string(got.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, got.Status)
	}
	return nil
}

func (c *orderFeatureContext) productHasStock(name string, stock int) error {
	var product models.Product
	if err := c.db.First(&product, c.products[name].ID).Error; err != nil {
		return err
	}
	if product.Stock != stock {
		return fmt.Errorf("expected %d %s in stock, got %d", stock, name, product.Stock)
	}
	return nil
}

func (c *orderFeatureContext) userHasEcoPoints(name string, points int) error {
	var user models.User
	if err := c.db.First(&user, c.users[name].ID).Error; err != nil {
		return err
	}
	if user.EcoPoints != points {
		return fmt.Errorf("expected %s to have %d eco points, got %d", name, points, user.EcoPoints)
	}
	return nil
}

func (c *orderFeatureContext) theRequestFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected the request to fail but it succeeded")
	}
	var domainErr *Error
	if !errors.As(c.err, &domainErr) {
		return fmt.Errorf("expected a domain error, got %T: %v", c.err, c.err)
	}
	if string(domainErr.Kind) != kind {
		return fmt.Errorf("expected %s, got %s (%s)", kind, domainErr.Kind, domainErr.Message)
	}
	return nil
}

func (c *orderFeatureContext) noOrderWasCreated() error {
	var count int64
	if err := c.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no orders, found %d", count)
	}
	return nil
}

func InitializeOrderScenario(ctx *godog.ScenarioContext) {
	tc := &orderFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.close()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a user "([^"]*)" with (-?\d+) eco points$`, tc.aUserWithEcoPoints)
	ctx.Step(`^a product "([^"]*)" with (\d+) in stock$`, tc.aProductWithStock)

	// When steps
	ctx.Step(`^"([^"]*)" orders (\d+) of "([^"]*)"$`, tc.userOrders)
	ctx.Step(`^"([^"]*)" tries to order (\d+) of "([^"]*)"$`, tc.userTriesToOrder)
	ctx.Step(`^"([^"]*)" orders (\d+) of "([^"]*)" earning (\d+) points$`, tc.userOrdersEarning)
	ctx.Step(`^"([^"]*)" orders (\d+) of "([^"]*)" using (\d+) points$`, tc.userOrdersUsing)
	ctx.Step(`^the order is (confirmed|shipped|delivered|cancelled|deleted)$`, tc.theOrderIs)
	ctx.Step(`^I try to (confirm|ship|deliver|cancel|delete) the order$`, tc.iTryTo)

	// Then steps
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^"([^"]*)" has (\d+) in stock$`, tc.productHasStock)
	ctx.Step(`^"([^"]*)" has (-?\d+) eco points$`, tc.userHasEcoPoints)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^no order was created$`, tc.noOrderWasCreated)
}

func TestOrderLifecycleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeOrderScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features/order_lifecycle.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
