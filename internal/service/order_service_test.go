package service_test

import (
	"fmt"
	"sync"

	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/internal/notify"
	"github.com/vlasovmax/shopcore/internal/repository"
	"github.com/vlasovmax/shopcore/internal/service"
)

func (s *IntegrationTestSuite) TestPlaceOrderComputesTotalAndSnapshotsPrice() {
	admin := s.seedAdmin("admin@test.com")
	customer := s.seedCustomer("buyer@test.com")
	productID := s.seedProduct(admin, "Keyboard", 5350, 10)

	order, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: productID, Quantity: 3},
	})
	s.Require().NoError(err)
	s.Require().NotNil(order)

	s.Equal(int64(3*5350), order.TotalPrice)
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Require().Len(order.Items, 1)
	s.Equal(int64(5350), order.Items[0].Price)
	s.Equal("Keyboard", order.Items[0].Name)

	// Raising the catalog price afterwards must not touch the stored
	// item price.
	_, err = s.DbPool.Exec(s.Ctx, `UPDATE products SET price = 9999 WHERE id = $1`, productID)
	s.Require().NoError(err)

	var storedPrice int64
	err = s.DbPool.QueryRow(s.Ctx,
		`SELECT price FROM order_items WHERE order_id = $1`, order.ID,
	).Scan(&storedPrice)
	s.Require().NoError(err)
	s.Equal(int64(5350), storedPrice)

	s.Equal(int64(7), s.productStock(productID))
}

func (s *IntegrationTestSuite) TestPlaceOrderRollsBackOnFailedLine() {
	admin := s.seedAdmin("admin@test.com")
	customer := s.seedCustomer("buyer@test.com")
	okProduct := s.seedProduct(admin, "Mouse", 1200, 5)

	var scarceProduct int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO products (name, price, stock, category_id, created_by)
		SELECT 'Monitor', 30000, 1, category_id, created_by FROM products WHERE id = $1
		RETURNING id
	`, okProduct).Scan(&scarceProduct)
	s.Require().NoError(err)

	_, err = s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: okProduct, Quantity: 2},
		{ProductID: scarceProduct, Quantity: 3},
	})
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)

	// Nothing from the failed order survives.
	var orderCount int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	s.Equal(0, orderCount)

	s.Equal(int64(5), s.productStock(okProduct))
	s.Equal(int64(1), s.productStock(scarceProduct))
}

func (s *IntegrationTestSuite) TestPlaceOrderRejectsEmptyLines() {
	customer := s.seedCustomer("buyer@test.com")

	_, err := s.OrderService.PlaceOrder(s.Ctx, customer, nil)
	s.Require().ErrorIs(err, service.ErrNoItems)
}

func (s *IntegrationTestSuite) TestPlaceOrderUnknownProduct() {
	customer := s.seedCustomer("buyer@test.com")

	_, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: 424242, Quantity: 1},
	})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestPlaceOrderWithoutProfile() {
	admin := s.seedAdmin("admin@test.com")
	productID := s.seedProduct(admin, "Desk", 100, 10)

	_, err := s.OrderService.PlaceOrder(s.Ctx, admin, []domain.OrderLine{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().ErrorIs(err, repository.ErrCustomerNotFound)
}

func (s *IntegrationTestSuite) TestPlaceOrderDuplicateLinesDecrementCumulatively() {
	admin := s.seedAdmin("admin@test.com")
	customer := s.seedCustomer("buyer@test.com")
	productID := s.seedProduct(admin, "Lamp", 700, 5)

	_, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: productID, Quantity: 3},
		{ProductID: productID, Quantity: 3},
	})
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)
	s.Equal(int64(5), s.productStock(productID))

	order, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: productID, Quantity: 2},
		{ProductID: productID, Quantity: 2},
	})
	s.Require().NoError(err)
	s.Equal(int64(4*700), order.TotalPrice)
	s.Equal(int64(1), s.productStock(productID))
}

func (s *IntegrationTestSuite) TestConcurrentPlacementNeverOversells() {
	admin := s.seedAdmin("admin@test.com")
	productID := s.seedProduct(admin, "Console", 45000, 1)

	const buyers = 5
	errs := make([]error, buyers)

	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		customer := s.seedCustomer(fmt.Sprintf("buyer%d@test.com", i))
		wg.Add(1)
		go func(idx int, userID int64) {
			defer wg.Done()
			_, errs[idx] = s.OrderService.PlaceOrder(s.Ctx, userID, []domain.OrderLine{
				{ProductID: productID, Quantity: 1},
			})
		}(i, customer)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, repository.ErrInsufficientStock)
		}
	}

	s.Equal(1, succeeded)
	s.Equal(int64(0), s.productStock(productID))
}

func (s *IntegrationTestSuite) TestUpdateStatusFollowsLifecycle() {
	admin := s.seedAdmin("admin@test.com")
	customer := s.seedCustomer("buyer@test.com")
	productID := s.seedProduct(admin, "Chair", 8000, 2)

	order, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	// Skipping shipped is illegal.
	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusDelivered)
	s.Require().ErrorIs(err, domain.ErrIllegalTransition)

	updated, err := s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusShipped)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusShipped, updated.Status)

	// Same status twice is its own error.
	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusShipped)
	s.Require().ErrorIs(err, domain.ErrAlreadyInStatus)

	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusDelivered)
	s.Require().NoError(err)

	// Delivered is terminal.
	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusShipped)
	s.Require().ErrorIs(err, domain.ErrIllegalTransition)
}

func (s *IntegrationTestSuite) TestUpdateStatusRejectsUnknownStatus() {
	_, err := s.OrderService.UpdateStatus(s.Ctx, 1, domain.OrderStatus("teleported"))
	s.Require().ErrorIs(err, domain.ErrInvalidStatus)
}

func (s *IntegrationTestSuite) TestUpdateStatusUnknownOrder() {
	_, err := s.OrderService.UpdateStatus(s.Ctx, 424242, domain.OrderStatusShipped)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestUpdateStatusNotifiesOwnerOnly() {
	admin := s.seedAdmin("admin@test.com")
	owner := s.seedCustomer("owner@test.com")
	bystander := s.seedCustomer("bystander@test.com")
	productID := s.seedProduct(admin, "Headphones", 15000, 3)

	order, err := s.OrderService.PlaceOrder(s.Ctx, owner, []domain.OrderLine{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	ownerSub := &recordingSubscriber{}
	bystanderSub := &recordingSubscriber{}
	s.Hub.Subscribe(notify.UserGroup(owner), ownerSub)
	s.Hub.Subscribe(notify.UserGroup(bystander), bystanderSub)

	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusShipped)
	s.Require().NoError(err)

	events := ownerSub.Events()
	s.Require().Len(events, 1)
	s.Equal(domain.EventTypeOrderStatus, events[0].Type)
	s.Equal(owner, events[0].UserID)
	s.Contains(events[0].Message, fmt.Sprintf("order %d", order.ID))
	s.Contains(events[0].Message, "shipped")

	s.Empty(bystanderSub.Events())
}

func (s *IntegrationTestSuite) TestFailedTransitionPublishesNothing() {
	admin := s.seedAdmin("admin@test.com")
	owner := s.seedCustomer("owner@test.com")
	productID := s.seedProduct(admin, "Tablet", 20000, 1)

	order, err := s.OrderService.PlaceOrder(s.Ctx, owner, []domain.OrderLine{
		{ProductID: productID, Quantity: 1},
	})
	s.Require().NoError(err)

	sub := &recordingSubscriber{}
	s.Hub.Subscribe(notify.UserGroup(owner), sub)

	_, err = s.OrderService.UpdateStatus(s.Ctx, order.ID, domain.OrderStatusDelivered)
	s.Require().ErrorIs(err, domain.ErrIllegalTransition)

	s.Empty(sub.Events())
}

func (s *IntegrationTestSuite) TestListUserOrdersPaginatesNewestFirst() {
	admin := s.seedAdmin("admin@test.com")
	customer := s.seedCustomer("buyer@test.com")
	productID := s.seedProduct(admin, "Pen", 100, 100)

	var placed []int64
	for i := 0; i < 3; i++ {
		order, err := s.OrderService.PlaceOrder(s.Ctx, customer, []domain.OrderLine{
			{ProductID: productID, Quantity: 1},
		})
		s.Require().NoError(err)
		placed = append(placed, order.ID)
	}

	orders, total, err := s.OrderService.ListUserOrders(s.Ctx, customer, 2, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(orders, 2)
	s.Equal(placed[2], orders[0].ID)
	s.Require().Len(orders[0].Items, 1)

	orders, total, err = s.OrderService.ListUserOrders(s.Ctx, customer, 2, 2)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(orders, 1)
	s.Equal(placed[0], orders[0].ID)
}
