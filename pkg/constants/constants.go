package constants

const DATE_FORMAT = "2006-01-02"

// BINANCE_MAX_KLINES_LIMIT is the largest kline page the futures API returns.
const BINANCE_MAX_KLINES_LIMIT = 1000

// BINANCE_ORDER_NOT_EXIST is returned by GetOrder for unknown or purged orders.
const BINANCE_ORDER_NOT_EXIST = -2013

// BINANCE_UNKNOWN_ORDER is returned by CancelOrder for unknown orders.
const BINANCE_UNKNOWN_ORDER = -2011
