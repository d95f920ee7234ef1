package query

// Re-export read models from readmodel package so API callers need one import
import "github.com/example/stock-ledger/internal/readmodel"

type StockReadModel = readmodel.StockReadModel
type PendingRequestReadModel = readmodel.PendingRequestReadModel
type HistoryReadModel = readmodel.HistoryReadModel
type DraftLineReadModel = readmodel.DraftLineReadModel
type DraftCartReadModel = readmodel.DraftCartReadModel
