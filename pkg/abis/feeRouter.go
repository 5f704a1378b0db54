package abis

// The fee router takes the app id of the delegating app along with the pool asset. It resolves the
// delegator from msg.sender on-chain, so the arguments here only select what to move.
const feeRouterAbi = `[
	{"type":"function","name":"depositToAave","stateMutability":"nonpayable","inputs":[
		{"name":"appId","type":"uint40"},
		{"name":"poolAsset","type":"address"},
		{"name":"amount","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"withdrawFromAave","stateMutability":"nonpayable","inputs":[
		{"name":"appId","type":"uint40"},
		{"name":"poolAsset","type":"address"},
		{"name":"amount","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"withdrawAppFees","stateMutability":"nonpayable","inputs":[
		{"name":"appId","type":"uint40"},
		{"name":"token","type":"address"}
	],"outputs":[]},
	{"type":"function","name":"setAavePool","stateMutability":"nonpayable","inputs":[
		{"name":"aavePool","type":"address"}
	],"outputs":[]}
]`
