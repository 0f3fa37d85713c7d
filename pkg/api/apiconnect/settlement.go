package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "settleup.v1.SettlementService"

// Procedure paths of SettlementService.
const (
	SettlementServiceCreateSessionProcedure              = "/settleup.v1.SettlementService/CreateSession"
	SettlementServiceGetSessionProcedure                 = "/settleup.v1.SettlementService/GetSession"
	SettlementServiceListEntriesProcedure                = "/settleup.v1.SettlementService/ListEntries"
	SettlementServiceGenerateEntriesProcedure            = "/settleup.v1.SettlementService/GenerateEntries"
	SettlementServiceRefreshEntriesProcedure             = "/settleup.v1.SettlementService/RefreshEntries"
	SettlementServiceFillEntryProcedure                  = "/settleup.v1.SettlementService/FillEntry"
	SettlementServiceSkipEntryProcedure                  = "/settleup.v1.SettlementService/SkipEntry"
	SettlementServiceAddManualEntryProcedure             = "/settleup.v1.SettlementService/AddManualEntry"
	SettlementServiceConfirmSettlementProcedure          = "/settleup.v1.SettlementService/ConfirmSettlement"
	SettlementServiceReportPaymentProcedure              = "/settleup.v1.SettlementService/ReportPayment"
	SettlementServiceConfirmReceiptProcedure             = "/settleup.v1.SettlementService/ConfirmReceipt"
	SettlementServiceSettleConsolidatedSessionsProcedure = "/settleup.v1.SettlementService/SettleConsolidatedSessions"
)

// SettlementServiceHandler is implemented by the server.
type SettlementServiceHandler interface {
	CreateSession(context.Context, *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GenerateEntries(context.Context, *connect.Request[api.GenerateEntriesRequest]) (*connect.Response[api.GenerateEntriesResponse], error)
	RefreshEntries(context.Context, *connect.Request[api.RefreshEntriesRequest]) (*connect.Response[api.RefreshEntriesResponse], error)
	FillEntry(context.Context, *connect.Request[api.FillEntryRequest]) (*connect.Response[api.FillEntryResponse], error)
	SkipEntry(context.Context, *connect.Request[api.SkipEntryRequest]) (*connect.Response[api.SkipEntryResponse], error)
	AddManualEntry(context.Context, *connect.Request[api.AddManualEntryRequest]) (*connect.Response[api.AddManualEntryResponse], error)
	ConfirmSettlement(context.Context, *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error)
	ReportPayment(context.Context, *connect.Request[api.ReportPaymentRequest]) (*connect.Response[api.ReportPaymentResponse], error)
	ConfirmReceipt(context.Context, *connect.Request[api.ConfirmReceiptRequest]) (*connect.Response[api.ConfirmReceiptResponse], error)
	SettleConsolidatedSessions(context.Context, *connect.Request[api.SettleConsolidatedSessionsRequest]) (*connect.Response[api.SettleConsolidatedSessionsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceCreateSessionProcedure, connect.NewUnaryHandler(SettlementServiceCreateSessionProcedure, svc.CreateSession, opts...))
	mux.Handle(SettlementServiceGetSessionProcedure, connect.NewUnaryHandler(SettlementServiceGetSessionProcedure, svc.GetSession, opts...))
	mux.Handle(SettlementServiceListEntriesProcedure, connect.NewUnaryHandler(SettlementServiceListEntriesProcedure, svc.ListEntries, opts...))
	mux.Handle(SettlementServiceGenerateEntriesProcedure, connect.NewUnaryHandler(SettlementServiceGenerateEntriesProcedure, svc.GenerateEntries, opts...))
	mux.Handle(SettlementServiceRefreshEntriesProcedure, connect.NewUnaryHandler(SettlementServiceRefreshEntriesProcedure, svc.RefreshEntries, opts...))
	mux.Handle(SettlementServiceFillEntryProcedure, connect.NewUnaryHandler(SettlementServiceFillEntryProcedure, svc.FillEntry, opts...))
	mux.Handle(SettlementServiceSkipEntryProcedure, connect.NewUnaryHandler(SettlementServiceSkipEntryProcedure, svc.SkipEntry, opts...))
	mux.Handle(SettlementServiceAddManualEntryProcedure, connect.NewUnaryHandler(SettlementServiceAddManualEntryProcedure, svc.AddManualEntry, opts...))
	mux.Handle(SettlementServiceConfirmSettlementProcedure, connect.NewUnaryHandler(SettlementServiceConfirmSettlementProcedure, svc.ConfirmSettlement, opts...))
	mux.Handle(SettlementServiceReportPaymentProcedure, connect.NewUnaryHandler(SettlementServiceReportPaymentProcedure, svc.ReportPayment, opts...))
	mux.Handle(SettlementServiceConfirmReceiptProcedure, connect.NewUnaryHandler(SettlementServiceConfirmReceiptProcedure, svc.ConfirmReceipt, opts...))
	mux.Handle(SettlementServiceSettleConsolidatedSessionsProcedure, connect.NewUnaryHandler(SettlementServiceSettleConsolidatedSessionsProcedure, svc.SettleConsolidatedSessions, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient is a client for SettlementService.
type SettlementServiceClient struct {
	createSession              *connect.Client[api.CreateSessionRequest, api.CreateSessionResponse]
	getSession                 *connect.Client[api.GetSessionRequest, api.GetSessionResponse]
	listEntries                *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	generateEntries            *connect.Client[api.GenerateEntriesRequest, api.GenerateEntriesResponse]
	refreshEntries             *connect.Client[api.RefreshEntriesRequest, api.RefreshEntriesResponse]
	fillEntry                  *connect.Client[api.FillEntryRequest, api.FillEntryResponse]
	skipEntry                  *connect.Client[api.SkipEntryRequest, api.SkipEntryResponse]
	addManualEntry             *connect.Client[api.AddManualEntryRequest, api.AddManualEntryResponse]
	confirmSettlement          *connect.Client[api.ConfirmSettlementRequest, api.ConfirmSettlementResponse]
	reportPayment              *connect.Client[api.ReportPaymentRequest, api.ReportPaymentResponse]
	confirmReceipt             *connect.Client[api.ConfirmReceiptRequest, api.ConfirmReceiptResponse]
	settleConsolidatedSessions *connect.Client[api.SettleConsolidatedSessionsRequest, api.SettleConsolidatedSessionsResponse]
}

// NewSettlementServiceClient constructs a client for SettlementService.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &SettlementServiceClient{
		createSession:              connect.NewClient[api.CreateSessionRequest, api.CreateSessionResponse](httpClient, baseURL+SettlementServiceCreateSessionProcedure, opts...),
		getSession:                 connect.NewClient[api.GetSessionRequest, api.GetSessionResponse](httpClient, baseURL+SettlementServiceGetSessionProcedure, opts...),
		listEntries:                connect.NewClient[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL+SettlementServiceListEntriesProcedure, opts...),
		generateEntries:            connect.NewClient[api.GenerateEntriesRequest, api.GenerateEntriesResponse](httpClient, baseURL+SettlementServiceGenerateEntriesProcedure, opts...),
		refreshEntries:             connect.NewClient[api.RefreshEntriesRequest, api.RefreshEntriesResponse](httpClient, baseURL+SettlementServiceRefreshEntriesProcedure, opts...),
		fillEntry:                  connect.NewClient[api.FillEntryRequest, api.FillEntryResponse](httpClient, baseURL+SettlementServiceFillEntryProcedure, opts...),
		skipEntry:                  connect.NewClient[api.SkipEntryRequest, api.SkipEntryResponse](httpClient, baseURL+SettlementServiceSkipEntryProcedure, opts...),
		addManualEntry:             connect.NewClient[api.AddManualEntryRequest, api.AddManualEntryResponse](httpClient, baseURL+SettlementServiceAddManualEntryProcedure, opts...),
		confirmSettlement:          connect.NewClient[api.ConfirmSettlementRequest, api.ConfirmSettlementResponse](httpClient, baseURL+SettlementServiceConfirmSettlementProcedure, opts...),
		reportPayment:              connect.NewClient[api.ReportPaymentRequest, api.ReportPaymentResponse](httpClient, baseURL+SettlementServiceReportPaymentProcedure, opts...),
		confirmReceipt:             connect.NewClient[api.ConfirmReceiptRequest, api.ConfirmReceiptResponse](httpClient, baseURL+SettlementServiceConfirmReceiptProcedure, opts...),
		settleConsolidatedSessions: connect.NewClient[api.SettleConsolidatedSessionsRequest, api.SettleConsolidatedSessionsResponse](httpClient, baseURL+SettlementServiceSettleConsolidatedSessionsProcedure, opts...),
	}
}

func (c *SettlementServiceClient) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GenerateEntries(ctx context.Context, req *connect.Request[api.GenerateEntriesRequest]) (*connect.Response[api.GenerateEntriesResponse], error) {
	return c.generateEntries.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RefreshEntries(ctx context.Context, req *connect.Request[api.RefreshEntriesRequest]) (*connect.Response[api.RefreshEntriesResponse], error) {
	return c.refreshEntries.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) FillEntry(ctx context.Context, req *connect.Request[api.FillEntryRequest]) (*connect.Response[api.FillEntryResponse], error) {
	return c.fillEntry.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) SkipEntry(ctx context.Context, req *connect.Request[api.SkipEntryRequest]) (*connect.Response[api.SkipEntryResponse], error) {
	return c.skipEntry.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) AddManualEntry(ctx context.Context, req *connect.Request[api.AddManualEntryRequest]) (*connect.Response[api.AddManualEntryResponse], error) {
	return c.addManualEntry.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ConfirmSettlement(ctx context.Context, req *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error) {
	return c.confirmSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ReportPayment(ctx context.Context, req *connect.Request[api.ReportPaymentRequest]) (*connect.Response[api.ReportPaymentResponse], error) {
	return c.reportPayment.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ConfirmReceipt(ctx context.Context, req *connect.Request[api.ConfirmReceiptRequest]) (*connect.Response[api.ConfirmReceiptResponse], error) {
	return c.confirmReceipt.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) SettleConsolidatedSessions(ctx context.Context, req *connect.Request[api.SettleConsolidatedSessionsRequest]) (*connect.Response[api.SettleConsolidatedSessionsResponse], error) {
	return c.settleConsolidatedSessions.CallUnary(ctx, req)
}
