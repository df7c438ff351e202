/*
 * Copyright (c) 2024 Golang Argentina
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
 * of the Software, and to permit persons to whom the Software is furnished to do
 * so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
 * INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
 * PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
 * HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF
 * CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE
 * OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

package hasar

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIVAHelpers(t *testing.T) {
	t.Parallel()
	type args struct {
		amount string
	}
	tests := []struct {
		name      string
		args      args
		wantNet   string
		wantGross string
		wantIVA   string
	}{
		{
			name:      "round gross",
			args:      args{amount: "12.10"},
			wantNet:   "10.00",
			wantGross: "14.64",
			wantIVA:   "2.10",
		},
		{
			name:      "unit amount",
			args:      args{amount: "1.21"},
			wantNet:   "1.00",
			wantGross: "1.46",
			wantIVA:   "0.21",
		},
		{
			name:      "zero",
			args:      args{amount: "0"},
			wantNet:   "0.00",
			wantGross: "0.00",
			wantIVA:   "0.00",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			amount := decimal.RequireFromString(tt.args.amount)
			if got := NetAmount(amount).StringFixed(2); got != tt.wantNet {
				t.Errorf("NetAmount() = %v, want %v", got, tt.wantNet)
			}
			if got := GrossAmount(amount).StringFixed(2); got != tt.wantGross {
				t.Errorf("GrossAmount() = %v, want %v", got, tt.wantGross)
			}
			if got := IVAFromGross(amount).StringFixed(2); got != tt.wantIVA {
				t.Errorf("IVAFromGross() = %v, want %v", got, tt.wantIVA)
			}
		})
	}
}

func TestNetGrossInverse(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"1.00", "10.00", "123.45", "0.37", "99999.99"} {
		net := decimal.RequireFromString(s)
		back := NetAmount(GrossAmount(net))
		if back.StringFixed(6) != net.StringFixed(6) {
			t.Errorf("NetAmount(GrossAmount(%s)) = %s, want %s", s, back, net)
		}
	}
}

func TestIVAFromNetPlusNetEqualsGross(t *testing.T) {
	t.Parallel()
	net := decimal.RequireFromString("200.00")
	gross := net.Add(IVAFromNet(net))
	if gross.StringFixed(2) != "242.00" {
		t.Errorf("net + IVA = %v, want 242.00", gross.StringFixed(2))
	}
}
