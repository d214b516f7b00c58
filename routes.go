package main

import (
	"net/http"

	"atec/authz"
	"atec/category"
	"atec/client"
	"atec/contract"
	"atec/inout"
	"atec/loader"
	"atec/order"
	"atec/product"
	"atec/render"
	"atec/report"
	"atec/system"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
)

// SetupRoutes registers the health check on mux and every API route behind
// the tenancy middleware and the authorization guard.
func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB, az *authz.Authorizer, printer render.PDFPrinter) {
	api := http.NewServeMux()
	handle := func(pattern, object, action string, h http.HandlerFunc) {
		api.Handle(pattern, az.Require(object, action, h))
	}
	const (
		read  = authz.ActionRead
		write = authz.ActionWrite
		admin = authz.ActionAdmin
	)

	// Contracts
	handle("GET /api/systems", authz.ObjectContracts, read, system.ListSystemsHandler(dbConn))
	handle("POST /api/systems", authz.ObjectContracts, write, system.CreateSystemHandler(dbConn))
	handle("GET /api/systems/{id}", authz.ObjectContracts, read, system.GetSystemHandler(dbConn))
	handle("PUT /api/systems/{id}", authz.ObjectContracts, write, system.UpdateSystemHandler(dbConn))
	handle("DELETE /api/systems/{id}", authz.ObjectContracts, write, system.DeleteSystemHandler(dbConn))

	handle("GET /api/technicians", authz.ObjectContracts, read, system.ListTechniciansHandler(dbConn))
	handle("POST /api/technicians", authz.ObjectContracts, write, system.CreateTechnicianHandler(dbConn))
	handle("GET /api/technicians/{id}", authz.ObjectContracts, read, system.GetTechnicianHandler(dbConn))
	handle("PUT /api/technicians/{id}", authz.ObjectContracts, write, system.UpdateTechnicianHandler(dbConn))
	handle("DELETE /api/technicians/{id}", authz.ObjectContracts, write, system.DeleteTechnicianHandler(dbConn))

	handle("GET /api/contracts", authz.ObjectContracts, read, client.ListClientsHandler(dbConn))
	handle("POST /api/contracts", authz.ObjectContracts, write, client.CreateClientHandler(dbConn))
	handle("POST /api/contracts/import", authz.ObjectContracts, write, client.ImportClientsHandler(dbConn))
	handle("GET /api/contracts/renewals", authz.ObjectContracts, read, contract.ListRenewalsHandler(dbConn))
	handle("POST /api/contracts/renewals", authz.ObjectContracts, write, contract.RenewContractsHandler(dbConn))
	handle("GET /api/contracts/{id}", authz.ObjectContracts, read, client.GetClientHandler(dbConn))
	handle("PUT /api/contracts/{id}", authz.ObjectContracts, write, client.UpdateClientHandler(dbConn))
	handle("DELETE /api/contracts/{id}", authz.ObjectContracts, write, client.DeleteClientHandler(dbConn))
	handle("POST /api/contracts/{id}/toggle-blocked", authz.ObjectContracts, write, client.ToggleBlockedHandler(dbConn))
	handle("POST /api/contracts/{id}/toggle-active", authz.ObjectContracts, write, client.ToggleActiveHandler(dbConn))
	handle("GET /api/contracts/{id}/renewals", authz.ObjectContracts, read, contract.ListClientRenewalsHandler(dbConn))

	// Inventory
	handle("GET /api/categories", authz.ObjectInventory, read, category.ListCategoriesHandler(dbConn))
	handle("POST /api/categories", authz.ObjectInventory, write, category.CreateCategoryHandler(dbConn))
	handle("GET /api/categories/{id}", authz.ObjectInventory, read, category.GetCategoryHandler(dbConn))
	handle("PUT /api/categories/{id}", authz.ObjectInventory, write, category.UpdateCategoryHandler(dbConn))
	handle("DELETE /api/categories/{id}", authz.ObjectInventory, write, category.DeleteCategoryHandler(dbConn))

	handle("GET /api/transaction-types", authz.ObjectInventory, read, inout.ListTransactionTypesHandler(dbConn))
	handle("POST /api/transaction-types", authz.ObjectInventory, write, inout.CreateTransactionTypeHandler(dbConn))
	handle("POST /api/transaction-types/defaults", authz.ObjectConfig, admin, loader.SeedDefaultsHandler(dbConn))
	handle("PUT /api/transaction-types/{id}", authz.ObjectInventory, write, inout.UpdateTransactionTypeHandler(dbConn))
	handle("DELETE /api/transaction-types/{id}", authz.ObjectInventory, write, inout.DeleteTransactionTypeHandler(dbConn))

	handle("GET /api/products", authz.ObjectInventory, read, product.ListProductsHandler(dbConn))
	handle("POST /api/products", authz.ObjectInventory, write, product.CreateProductHandler(dbConn))
	handle("GET /api/products/{id}", authz.ObjectInventory, read, product.GetProductHandler(dbConn))
	handle("PUT /api/products/{id}", authz.ObjectInventory, write, product.UpdateProductHandler(dbConn))
	handle("DELETE /api/products/{id}", authz.ObjectInventory, write, product.DeleteProductHandler(dbConn))
	handle("GET /api/products/{id}/lots", authz.ObjectInventory, read, product.ListLotsHandler(dbConn))

	handle("GET /api/transactions", authz.ObjectInventory, read, inout.ListTransactionsHandler(dbConn))
	handle("POST /api/transactions", authz.ObjectInventory, write, inout.CreateTransactionHandler(dbConn))
	handle("GET /api/transactions/export", authz.ObjectInventory, read, inout.ExportTransactionsHandler(dbConn))
	handle("GET /api/transactions/{id}", authz.ObjectInventory, read, inout.GetTransactionHandler(dbConn))
	handle("POST /api/transactions/{id}/archive", authz.ObjectInventory, write, inout.ArchiveTransactionHandler(dbConn))

	// Orders
	handle("GET /api/order-categories", authz.ObjectOrders, read, order.ListCategoriesHandler(dbConn))
	handle("POST /api/order-categories", authz.ObjectOrders, write, order.CreateCategoryHandler(dbConn))
	handle("GET /api/order-categories/{id}", authz.ObjectOrders, read, order.GetCategoryHandler(dbConn))
	handle("PUT /api/order-categories/{id}", authz.ObjectOrders, write, order.UpdateCategoryHandler(dbConn))
	handle("DELETE /api/order-categories/{id}", authz.ObjectOrders, write, order.DeleteCategoryHandler(dbConn))

	handle("GET /api/orders", authz.ObjectOrders, read, order.ListOrdersHandler(dbConn))
	handle("POST /api/orders", authz.ObjectOrders, write, order.CreateOrderHandler(dbConn))
	handle("GET /api/orders/summary", authz.ObjectOrders, read, order.SummaryHandler(dbConn))
	handle("GET /api/orders/{id}", authz.ObjectOrders, read, order.GetOrderHandler(dbConn))
	handle("PUT /api/orders/{id}", authz.ObjectOrders, write, order.UpdateOrderHandler(dbConn))
	handle("DELETE /api/orders/{id}", authz.ObjectOrders, write, order.DeleteOrderHandler(dbConn))

	// Reports
	handle("GET /api/reports/contracts", authz.ObjectReports, read, report.ContractsReportHandler(dbConn, printer))
	handle("GET /api/reports/renewals", authz.ObjectReports, read, report.RenewalsReportHandler(dbConn, printer))
	handle("GET /api/reports/transactions", authz.ObjectReports, read, report.TransactionsReportHandler(dbConn, printer))
	handle("GET /api/reports/orders", authz.ObjectReports, read, report.OrdersReportHandler(dbConn, printer))

	// Settings
	handle("GET /api/config", authz.ObjectConfig, read, GetConfigHandler())
	handle("POST /api/config", authz.ObjectConfig, admin, SaveConfigHandler())

	mux.Handle("/api/", tenancy.Middleware(tenancy.NewDBResolver(dbConn), api))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
}
