package chatbot

// glossary holds short definitions of common trading terms.
var glossary = map[string]string{
	"rsi":        "RSI (Relative Strength Index) measures the speed and change of price movements. RSI above 70 is considered overbought and below 30 oversold.",
	"macd":       "MACD (Moving Average Convergence Divergence) is a trend-following momentum indicator built from the difference between a 12-day and a 26-day EMA, with a 9-day EMA of that difference as its signal line.",
	"atr":        "ATR (Average True Range) measures volatility as the average daily range, including gaps from the previous close.",
	"sma":        "SMA (Simple Moving Average) is the plain average of the last N closing prices. Price above its 20- and 50-day SMAs suggests an uptrend.",
	"stop loss":  "A stop-loss is an order to exit a position once the price reaches a set level. It limits the loss on a trade.",
	"support":    "Support is a price level a stock has difficulty falling below, where buyers tend to step in.",
	"resistance": "Resistance is a price level a stock has difficulty rising above, where sellers tend to step in.",
	"bullish":    "Bullish means expecting the price of a stock or the market to rise.",
	"bearish":    "Bearish means expecting the price of a stock or the market to fall.",
	"volatility": "Volatility is how widely returns are spread. High volatility means the price can change dramatically over a short period.",
	"dividend":   "A dividend is a distribution of part of a company's earnings to its shareholders.",
	"pe ratio":   "The P/E ratio compares a company's share price with its per-share earnings. It helps judge whether a stock is overvalued or undervalued.",
}

// stockNames maps common company names and abbreviations to NSE tickers.
var stockNames = map[string]string{
	"reliance":      "RELIANCE.NS",
	"tcs":           "TCS.NS",
	"hdfc":          "HDFCBANK.NS",
	"hdfc bank":     "HDFCBANK.NS",
	"infosys":       "INFY.NS",
	"infy":          "INFY.NS",
	"icici":         "ICICIBANK.NS",
	"icici bank":    "ICICIBANK.NS",
	"sbi":           "SBIN.NS",
	"sbin":          "SBIN.NS",
	"state bank":    "SBIN.NS",
	"bharti":        "BHARTIARTL.NS",
	"airtel":        "BHARTIARTL.NS",
	"itc":           "ITC.NS",
	"kotak":         "KOTAKBANK.NS",
	"l&t":           "LT.NS",
	"larsen":        "LT.NS",
	"axis":          "AXISBANK.NS",
	"axis bank":     "AXISBANK.NS",
	"hul":           "HINDUNILVR.NS",
	"maruti":        "MARUTI.NS",
	"tata motors":   "TATAMOTORS.NS",
	"sun pharma":    "SUNPHARMA.NS",
	"wipro":         "WIPRO.NS",
	"hcl":           "HCLTECH.NS",
	"asian paints":  "ASIANPAINT.NS",
	"bajaj finance": "BAJFINANCE.NS",
	"bajaj finserv": "BAJAJFINSV.NS",
	"titan":         "TITAN.NS",
	"ultratech":     "ULTRACEMCO.NS",
	"ntpc":          "NTPC.NS",
	"power grid":    "POWERGRID.NS",
	"nestle":        "NESTLEIND.NS",
	"tech mahindra": "TECHM.NS",
	"mahindra":      "M&M.NS",
	"m&m":           "M&M.NS",
	"coal india":    "COALINDIA.NS",
	"adani ent":     "ADANIENT.NS",
	"adani ports":   "ADANIPORTS.NS",
	"jsw steel":     "JSWSTEEL.NS",
	"tata steel":    "TATASTEEL.NS",
	"hindalco":      "HINDALCO.NS",
	"grasim":        "GRASIM.NS",
	"cipla":         "CIPLA.NS",
	"dr reddy":      "DRREDDY.NS",
	"eicher":        "EICHERMOT.NS",
	"hero":          "HEROMOTOCO.NS",
	"divis":         "DIVISLAB.NS",
	"apollo":        "APOLLOHOSP.NS",
	"britannia":     "BRITANNIA.NS",
	"bpcl":          "BPCL.NS",
	"ongc":          "ONGC.NS",
	"dmart":         "DMART.NS",
	"nifty":         "^NSEI",
	"bank nifty":    "^NSEBANK",
	"sensex":        "^BSESN",
}

// notTickers are upper-case words that look like tickers but are not.
var notTickers = map[string]bool{
	"RSI": true, "MACD": true, "ATR": true, "SMA": true, "EMA": true,
	"BUY": true, "SELL": true, "HOLD": true, "NSE": true, "BSE": true,
	"IPO": true, "WHAT": true, "SHOW": true, "THE": true, "AND": true,
	"FOR": true, "STOP": true, "LOSS": true, "PRICE": true,
}
