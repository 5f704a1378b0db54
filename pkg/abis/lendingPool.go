package abis

// Subset of the lending pool (Aave v3 Pool) interface. Functions the validator does not allow are
// still listed so they classify as LendingPool and get an explicit rejection.
const lendingPoolAbi = `[
	{"type":"function","name":"supply","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"onBehalfOf","type":"address"},
		{"name":"referralCode","type":"uint16"}
	],"outputs":[]},
	{"type":"function","name":"supplyWithPermit","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"onBehalfOf","type":"address"},
		{"name":"referralCode","type":"uint16"},
		{"name":"deadline","type":"uint256"},
		{"name":"permitV","type":"uint8"},
		{"name":"permitR","type":"bytes32"},
		{"name":"permitS","type":"bytes32"}
	],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"to","type":"address"}
	],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"borrow","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"interestRateMode","type":"uint256"},
		{"name":"referralCode","type":"uint16"},
		{"name":"onBehalfOf","type":"address"}
	],"outputs":[]},
	{"type":"function","name":"repay","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"interestRateMode","type":"uint256"},
		{"name":"onBehalfOf","type":"address"}
	],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"repayWithATokens","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"interestRateMode","type":"uint256"}
	],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"setUserUseReserveAsCollateral","stateMutability":"nonpayable","inputs":[
		{"name":"asset","type":"address"},
		{"name":"useAsCollateral","type":"bool"}
	],"outputs":[]},
	{"type":"function","name":"setUserEMode","stateMutability":"nonpayable","inputs":[
		{"name":"categoryId","type":"uint8"}
	],"outputs":[]},
	{"type":"function","name":"liquidationCall","stateMutability":"nonpayable","inputs":[
		{"name":"collateralAsset","type":"address"},
		{"name":"debtAsset","type":"address"},
		{"name":"user","type":"address"},
		{"name":"debtToCover","type":"uint256"},
		{"name":"receiveAToken","type":"bool"}
	],"outputs":[]},
	{"type":"function","name":"flashLoanSimple","stateMutability":"nonpayable","inputs":[
		{"name":"receiverAddress","type":"address"},
		{"name":"asset","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"params","type":"bytes"},
		{"name":"referralCode","type":"uint16"}
	],"outputs":[]},
	{"type":"event","name":"Supply","anonymous":false,"inputs":[
		{"name":"reserve","type":"address","indexed":true},
		{"name":"user","type":"address","indexed":false},
		{"name":"onBehalfOf","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"referralCode","type":"uint16","indexed":true}
	]}
]`
