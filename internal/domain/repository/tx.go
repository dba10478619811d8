package repository

import "context"

// TxRepos repositorios ligados a una misma transacción de base de datos.
type TxRepos struct {
	Stock        StockRepository
	Movements    StockMovementRepository
	Transactions TransactionRepository
	Tabs         TabRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
