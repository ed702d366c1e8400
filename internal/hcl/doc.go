// Package hcl provides the HCL implementation of config.Loader. It parses
// settings files with hclparse, decodes the fixed block schema with gohcl and
// converts the free-form attributes (durations, timestamps, amounts) from
// their cty values.
package hcl
