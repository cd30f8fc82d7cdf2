package app

import (
	"fmt"

	expenseHTTP "github.com/allisson/expenses/internal/expense/http"
	expenseRepository "github.com/allisson/expenses/internal/expense/repository"
	expenseUseCase "github.com/allisson/expenses/internal/expense/usecase"
)

// ExpenseRepository returns the expense repository based on database driver.
func (c *Container) ExpenseRepository() (expenseUseCase.ExpenseRepository, error) {
	var err error
	c.expenseRepoInit.Do(func() {
		c.expenseRepository, err = c.initExpenseRepository()
		if err != nil {
			c.initErrors["expenseRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["expenseRepository"]; exists {
		return nil, storedErr
	}
	return c.expenseRepository, nil
}

// ExpenseUseCase returns the expense use case.
func (c *Container) ExpenseUseCase() (expenseUseCase.ExpenseUseCase, error) {
	var err error
	c.expenseUseCaseInit.Do(func() {
		c.expenseUseCase, err = c.initExpenseUseCase()
		if err != nil {
			c.initErrors["expenseUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["expenseUseCase"]; exists {
		return nil, storedErr
	}
	return c.expenseUseCase, nil
}

// ExpenseHandler returns the HTTP handler for expense operations.
func (c *Container) ExpenseHandler() (*expenseHTTP.ExpenseHandler, error) {
	var err error
	c.expenseHandlerInit.Do(func() {
		c.expenseHandler, err = c.initExpenseHandler()
		if err != nil {
			c.initErrors["expenseHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["expenseHandler"]; exists {
		return nil, storedErr
	}
	return c.expenseHandler, nil
}

// initExpenseRepository creates the expense repository based on the database driver.
func (c *Container) initExpenseRepository() (expenseUseCase.ExpenseRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for expense repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return expenseRepository.NewPostgreSQLExpenseRepository(db), nil
	case "mysql":
		return expenseRepository.NewMySQLExpenseRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initExpenseUseCase creates the expense use case with all its dependencies.
func (c *Container) initExpenseUseCase() (expenseUseCase.ExpenseUseCase, error) {
	expenseRepo, err := c.ExpenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense repository for expense use case: %w", err)
	}

	workQueue, err := c.WorkQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to get work queue for expense use case: %w", err)
	}

	baseUseCase := expenseUseCase.NewExpenseUseCase(expenseRepo, workQueue, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for expense use case: %w", err)
		}
		return expenseUseCase.NewExpenseUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initExpenseHandler creates the expense HTTP handler with all its dependencies.
func (c *Container) initExpenseHandler() (*expenseHTTP.ExpenseHandler, error) {
	useCase, err := c.ExpenseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense use case for expense handler: %w", err)
	}

	return expenseHTTP.NewExpenseHandler(useCase, c.Logger()), nil
}
