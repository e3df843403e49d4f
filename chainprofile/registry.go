package chainprofile

// Bitcoin returns the mainnet profile: full segwit and taproot support.
func Bitcoin() *Profile {
	p, _ := New(Profile{
		Name:             "bitcoin",
		Symbol:           "BTC",
		PubKeyHashPrefix: 0x00,
		ScriptHashPrefix: 0x05,
		Bech32HRP:        "bc",
		SupportsSegwit:   true,
		SupportsTaproot:  true,
		DustLimitSats:    546,
		MinFeeRateSatVB:  1,
	})
	return p
}

// BitcoinTestnet4 mirrors mainnet's capabilities under the testnet3
// address format: testnet4 reuses testnet3's prefixes and HRP rather than
// minting its own.
func BitcoinTestnet4() *Profile {
	p, _ := New(Profile{
		Name:             "bitcoin-testnet4",
		Symbol:           "tBTC",
		PubKeyHashPrefix: 0x6f,
		ScriptHashPrefix: 0xc4,
		Bech32HRP:        "tb",
		SupportsSegwit:   true,
		SupportsTaproot:  true,
		DustLimitSats:    546,
		MinFeeRateSatVB:  1,
	})
	return p
}

// BitcoinSignet mirrors testnet4's address format.
func BitcoinSignet() *Profile {
	p, _ := New(Profile{
		Name:             "bitcoin-signet",
		Symbol:           "sBTC",
		PubKeyHashPrefix: 0x6f,
		ScriptHashPrefix: 0xc4,
		Bech32HRP:        "tb",
		SupportsSegwit:   true,
		SupportsTaproot:  true,
		DustLimitSats:    546,
		MinFeeRateSatVB:  1,
	})
	return p
}

// Junkcoin is a legacy, non-segwit chain profile: empty HRP disables both
// capability flags, so every input/output on this chain is necessarily
// legacy P2PKH/P2SH.
func Junkcoin() *Profile {
	p, _ := New(Profile{
		Name:             "junkcoin",
		Symbol:           "JKC",
		PubKeyHashPrefix: 16,
		ScriptHashPrefix: 5,
		Bech32HRP:        "",
		DustLimitSats:    1000,
		MinFeeRateSatVB:  1,
	})
	return p
}
