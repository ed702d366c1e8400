package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Pump         *pumpBlock          `hcl:"pump,block"`
	Display      *displayBlock       `hcl:"display,block"`
	Feed         *feedBlock          `hcl:"feed,block"`
	Transactions []*transactionBlock `hcl:"transaction,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

type pumpBlock struct {
	Period hcl.Expression `hcl:"period,optional"`
	Yield  hcl.Expression `hcl:"yield,optional"`
}

type displayBlock struct {
	Title        *string `hcl:"title,optional"`
	NumZeros     *int    `hcl:"num_zeros,optional"`
	DecimalPoint *int    `hcl:"decimal_point,optional"`
}

type feedBlock struct {
	URL                string         `hcl:"url"`
	Namespace          *string        `hcl:"namespace,optional"`
	InsecureSkipVerify *bool          `hcl:"insecure_skip_verify,optional"`
	ConnectTimeout     hcl.Expression `hcl:"connect_timeout,optional"`
}

type transactionBlock struct {
	Hash      string         `hcl:"hash,label"`
	Height    int32          `hcl:"height,optional"`
	Timestamp hcl.Expression `hcl:"timestamp,optional"`
	Value     hcl.Expression `hcl:"value"`
	Label     string         `hcl:"label,optional"`
}
