package bank

import "context"

type Account struct {
	balance int
}

// Deposit puts money into the account.
func (a *Account) Deposit(amount int) error {
	a.balance += amount
	return nil
}

// Withdraw takes money out of the account.
func (a *Account) Withdraw(ctx context.Context, amount int) error {
	a.balance -= amount
	return nil
}

// CheckBalance reports the current balance.
func (a *Account) CheckBalance() int {
	return a.balance
}

// Transfer sends money to another account.
func (a *Account) Transfer(to string, amount int, memo *string) error {
	return nil
}

func (a *Account) audit() {}
