package config

const BridgeConfigTemplate = `db_path = "{{ .DbPath }}"

server_port = {{ .ServerPort }}
signing_service_url = "{{ .SigningServiceUrl }}"

wallet_timeout_ms = {{ .WalletTimeoutMs }}
rpc_timeout_ms = {{ .RpcTimeoutMs }}
resign_cooldown_ms = {{ .ResignCooldownMs }}

[chains]{{ range $k, $v := .Chains }}
	[chains.{{ $k }}]
	chain = "{{ $k }}"
	rpcs = [{{ range $v.Rpcs }}"{{ . }}", {{ end }}]
	wallet_url = "{{ $v.WalletUrl }}"
	bridge_address = "{{ $v.BridgeAddress }}"
	confirmations = {{ $v.Confirmations }}
	block_time_ms = {{ $v.BlockTimeMs }}
	explorer_tx_url = "{{ $v.ExplorerTxUrl }}"
{{ end }}
[assets]{{ range $k, $v := .Assets }}
	[assets.{{ $k }}]
	id = "{{ $k }}"
	symbol = "{{ $v.Symbol }}"
	name = "{{ $v.Name }}"
	[assets.{{ $k }}.addresses]{{ range $ck, $addr := $v.Addresses }}
	{{ $ck }} = "{{ $addr }}"{{ end }}
	[assets.{{ $k }}.decimals]{{ range $ck, $d := $v.Decimals }}
	{{ $ck }} = {{ $d }}{{ end }}
{{ end }}
`
