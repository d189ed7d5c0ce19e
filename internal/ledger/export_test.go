package ledger

var MapProcedureError = mapProcedureError
