package addressBook

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	Chain_Ethereum uint64 = 1
	Chain_Optimism uint64 = 10
	Chain_Polygon  uint64 = 137
	Chain_Base     uint64 = 8453
	Chain_Arbitrum uint64 = 42161
)

type labeledAddress struct {
	label   string
	address string
}

type defaultChain struct {
	chainId       uint64
	name          string
	lendingPool   string
	receiptTokens []labeledAddress
}

// Aave v3 markets and the aTokens of their listed reserves. Testnets and reserves listed later are
// added through the address book file. Fee routers are per deployment and only come from
// configuration.
var defaultChains = []defaultChain{
	{
		chainId:     Chain_Ethereum,
		name:        "ethereum",
		lendingPool: "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2",
		receiptTokens: []labeledAddress{
			{"aEthWETH", "0x4d5F47FA6A74757f35C14fD3a6Ef8E3C9BC514E8"},
			{"aEthwstETH", "0x0B925eD163218f6662a35e0f0371Ac234f9E9371"},
			{"aEthWBTC", "0x5Ee5bf7ae06D1Be5997A1A72006FE6C607eC6DE8"},
			{"aEthUSDC", "0x98C23E9d8f34FEFb1B7BD6a91B7FF122F4e16F5c"},
			{"aEthDAI", "0x018008bfb33d285247A21d44E50697654f754e63"},
			{"aEthLINK", "0x5E8C8A7243651DB1384C0dDfDbE39761E8e7E51a"},
			{"aEthAAVE", "0xA700b4eB416Be35b2911fd5Dee80678ff64fF6C9"},
			{"aEthUSDT", "0x23878914EFE38d27C4D67Ab83ed1b93A74D4086a"},
			{"aEthrETH", "0xCc9EE9483f662091a1de4795249E24aC0aC2630f"},
			{"aEthLUSD", "0x3Fe6a295459FAe07DF8A0ceCC36F37160FE86AA9"},
			{"aEthCRV", "0x7B95Ec873268a6BFC6427e7a28e396Db9D0ebc65"},
			{"aEthGHO", "0x00907f9921424583e7ffBfEdf84F92B7B2Be4977"},
			{"aEthsDAI", "0x4C612E3B15b96Ff9A6faED838F8d07d479a8dD4c"},
			{"aEthweETH", "0xBdfa7b7893081B35Fb54027489e2Bc7A38275129"},
		},
	},
	{
		chainId:     Chain_Optimism,
		name:        "optimism",
		lendingPool: "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
		receiptTokens: []labeledAddress{
			{"aOptDAI", "0x82E64f49Ed5EC1bC6e43DAD4FC8Af9bb3A2312EE"},
			{"aOptLINK", "0x191c10Aa4AF7C30e871E70C95dB0E4eb77237530"},
			{"aOptUSDC", "0x625E7708f30cA75bfd92586e17077590C60eb4cD"},
			{"aOptWBTC", "0x078f358208685046a11C85e8ad32895DED33A249"},
			{"aOptWETH", "0xe50fA9b3c56FfB159cB0FCA61F5c9D750e8128c8"},
			{"aOptUSDT", "0x6ab707Aca953eDAeFBc4fD23bA73294241490620"},
			{"aOptAAVE", "0xf329e36C7bF6E5E86ce2150875a84Ce77f477375"},
			{"aOptSUSD", "0x6d80113e533a2C0fe82EaBD35f1875DcEA89Ea97"},
			{"aOptOP", "0x513c7E3a9c69cA3e22550eF58AC1C0088e918FFf"},
			{"aOptwstETH", "0xc45A479877e1e9Dfe9FcD4056c699575a1045dAA"},
			{"aOptLUSD", "0x8Eb270e296023E9D92081fdF967dDd7878724424"},
			{"aOptMAI", "0x8ffDf2DE812095b1D19CB146E4c004587C0A0692"},
			{"aOptrETH", "0x724dc807b04555b71ed48a6896b6F41593b8C637"},
			{"aOptUSDCn", "0x38d693cE1dF5AaDF7bC62595A37D667aD57922e5"},
		},
	},
	{
		chainId:     Chain_Polygon,
		name:        "polygon",
		lendingPool: "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
		receiptTokens: []labeledAddress{
			{"aPolDAI", "0x82E64f49Ed5EC1bC6e43DAD4FC8Af9bb3A2312EE"},
			{"aPolLINK", "0x191c10Aa4AF7C30e871E70C95dB0E4eb77237530"},
			{"aPolUSDC", "0x625E7708f30cA75bfd92586e17077590C60eb4cD"},
			{"aPolWBTC", "0x078f358208685046a11C85e8ad32895DED33A249"},
			{"aPolWETH", "0xe50fA9b3c56FfB159cB0FCA61F5c9D750e8128c8"},
			{"aPolUSDT", "0x6ab707Aca953eDAeFBc4fD23bA73294241490620"},
			{"aPolAAVE", "0xf329e36C7bF6E5E86ce2150875a84Ce77f477375"},
			{"aPolWMATIC", "0x6d80113e533a2C0fe82EaBD35f1875DcEA89Ea97"},
			{"aPolCRV", "0x513c7E3a9c69cA3e22550eF58AC1C0088e918FFf"},
			{"aPolSUSHI", "0xc45A479877e1e9Dfe9FcD4056c699575a1045dAA"},
			{"aPolGHST", "0x8Eb270e296023E9D92081fdF967dDd7878724424"},
			{"aPolBAL", "0x8ffDf2DE812095b1D19CB146E4c004587C0A0692"},
			{"aPolDPI", "0x724dc807b04555b71ed48a6896b6F41593b8C637"},
			{"aPolEURS", "0x38d693cE1dF5AaDF7bC62595A37D667aD57922e5"},
			{"aPolMaticX", "0x80cA0d8C38d2e2BcbaB66aA1648Bd1C7160500FE"},
			{"aPolstMATIC", "0xEA1132120ddcDDA2F119e99Fa7A27a0d036F7Ac9"},
			{"aPolwstETH", "0xf59036CAEBeA7dC4b86638DFA2E3C97dA9FcCd40"},
			{"aPolUSDCn", "0xA4D94019934D8333Ef880ABFFbF2FDd611C762BD"},
		},
	},
	{
		chainId:     Chain_Base,
		name:        "base",
		lendingPool: "0xA238Dd80C259a72e81d7e4664a9801593F98d1c5",
		receiptTokens: []labeledAddress{
			{"aBasWETH", "0xD4a0e0b9149BCee3C920d2E00b5dE09138fd8bb7"},
			{"aBascbETH", "0xcf3D55c10DB69f28fD1A75Bd73f3D8A2d9c595ad"},
			{"aBasUSDbC", "0x0a1d576f3eFeF75b330424287a95A366e8281D54"},
			{"aBaswstETH", "0x99CBC45ea5bb7eF3a5BC08FB1B7E56bB2442Ef0D"},
			{"aBasUSDC", "0x4e65fE4DbA92790696d040ac24Aa414708F5c0AB"},
			{"aBasweETH", "0x7C307e128efA31F540F2E2d976C995E0B65F51F6"},
			{"aBascbBTC", "0xBdb9300b7CDE636d9cD4AFF00f6F009fFBBc8EE6"},
		},
	},
	{
		chainId:     Chain_Arbitrum,
		name:        "arbitrum",
		lendingPool: "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
		receiptTokens: []labeledAddress{
			{"aArbDAI", "0x82E64f49Ed5EC1bC6e43DAD4FC8Af9bb3A2312EE"},
			{"aArbLINK", "0x191c10Aa4AF7C30e871E70C95dB0E4eb77237530"},
			{"aArbUSDC", "0x625E7708f30cA75bfd92586e17077590C60eb4cD"},
			{"aArbWBTC", "0x078f358208685046a11C85e8ad32895DED33A249"},
			{"aArbWETH", "0xe50fA9b3c56FfB159cB0FCA61F5c9D750e8128c8"},
			{"aArbUSDT", "0x6ab707Aca953eDAeFBc4fD23bA73294241490620"},
			{"aArbAAVE", "0xf329e36C7bF6E5E86ce2150875a84Ce77f477375"},
			{"aArbEURS", "0x6d80113e533a2C0fe82EaBD35f1875DcEA89Ea97"},
			{"aArbwstETH", "0x513c7E3a9c69cA3e22550eF58AC1C0088e918FFf"},
			{"aArbMAI", "0xc45A479877e1e9Dfe9FcD4056c699575a1045dAA"},
			{"aArbrETH", "0x8Eb270e296023E9D92081fdF967dDd7878724424"},
			{"aArbLUSD", "0x8ffDf2DE812095b1D19CB146E4c004587C0A0692"},
			{"aArbUSDCn", "0x724dc807b04555b71ed48a6896b6F41593b8C637"},
			{"aArbFRAX", "0x38d693cE1dF5AaDF7bC62595A37D667aD57922e5"},
			{"aArbARB", "0x6533afac2E7BCCB20dca161449A13A32D391fb00"},
			{"aArbweETH", "0x8437d7C167dFB82ED4Cb79CD44B7a32A1dd95c77"},
			{"aArbGHO", "0xeBe517846d0F36eCEd99C735cbF6131e1fEB775D"},
		},
	},
}

func NewDefaultAddressBook() *StaticAddressBook {
	book := &StaticAddressBook{chains: make(map[uint64]*ChainAddresses, len(defaultChains))}
	for _, d := range defaultChains {
		pool := common.HexToAddress(d.lendingPool)
		c := &ChainAddresses{
			ChainId:     d.chainId,
			Name:        d.name,
			LendingPool: pool,
			Labels:      map[common.Address]string{pool: "Pool"},
		}
		for _, token := range d.receiptTokens {
			address := common.HexToAddress(token.address)
			c.addReceiptToken(address)
			c.Labels[address] = token.label
		}
		book.chains[d.chainId] = c
	}
	return book
}
