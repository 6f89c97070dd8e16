package main

import (
	"fmt"
	"sync"
)

// Customer is keyed by its Email.
type Customer struct {
	mu     sync.Mutex
	Email  string
	Name   string
	Region string
}

func (*Customer) IDKey() string { return "email" }

func (c *Customer) Field(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "email":
		return c.Email, true
	case "name":
		return c.Name, true
	case "region":
		if c.Region == "" {
			return nil, true
		}
		return c.Region, true
	}
	return nil, false
}

func (c *Customer) SetField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "region":
		s, _ := value.(string)
		c.Region = s
	default:
		return fmt.Errorf("customer field %q is read-only", name)
	}
	return nil
}

// Order belongs to a customer through CustomerEmail.
type Order struct {
	mu            sync.Mutex
	ID            int
	CustomerEmail string
	Status        string
}

func (o *Order) Field(name string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch name {
	case "id":
		return o.ID, true
	case "customer_email":
		if o.CustomerEmail == "" {
			return nil, true
		}
		return o.CustomerEmail, true
	case "status":
		return o.Status, true
	}
	return nil, false
}

func (o *Order) SetField(name string, value any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, _ := value.(string)
	switch name {
	case "customer_email":
		o.CustomerEmail = s
	case "status":
		o.Status = s
	default:
		return fmt.Errorf("order field %q is read-only", name)
	}
	return nil
}
