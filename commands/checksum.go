package commands

import (
	"bufio"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// cksumTable is the CRC-32 table for the POSIX polynomial 0x04C11DB7,
// processed MSB first unlike hash/crc32.
var cksumTable = func() (t [256]uint32) {
	for i := range t {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ 0x04C11DB7
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return
}()

func posixCksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = crc<<8 ^ cksumTable[byte(crc>>24)^b]
	}
	for n := len(data); n > 0; n >>= 8 {
		crc = crc<<8 ^ cksumTable[byte(crc>>24)^byte(n)]
	}
	return ^crc
}

// Cksum prints the POSIX CRC and byte count of each file.
func Cksum(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cksum [FILE]...",
		Short: "Print CRC checksum and byte counts of each FILE.",
	}

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		return cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(name string, fd io.Reader) error {
			data, err := io.ReadAll(fd)
			if err != nil {
				return err
			}
			if name == "-" {
				fmt.Fprintf(w, "%d %d\n", posixCksum(data), len(data))
			} else {
				fmt.Fprintf(w, "%d %d %s\n", posixCksum(data), len(data), name)
			}
			return nil
		})
	})
}

// Md5sum prints or checks MD5 checksums.
func Md5sum(virtOS vos.VOS) int {
	return hashSum(virtOS, "md5sum", md5.New)
}

// Sha1sum prints or checks SHA1 checksums.
func Sha1sum(virtOS vos.VOS) int {
	return hashSum(virtOS, "sha1sum", sha1.New)
}

// Sha256sum prints or checks SHA256 checksums.
func Sha256sum(virtOS vos.VOS) int {
	return hashSum(virtOS, "sha256sum", sha256.New)
}

// Sha512sum prints or checks SHA512 checksums.
func Sha512sum(virtOS vos.VOS) int {
	return hashSum(virtOS, "sha512sum", sha512.New)
}

// hashSum runs an md5sum style command around a hash constructor.
func hashSum(virtOS vos.VOS, name string, newHash func() hash.Hash) int {
	cmd := &SimpleCommand{
		Use:   fmt.Sprintf("%s [OPTION]... [FILE]...", name),
		Short: fmt.Sprintf("Print or check %s checksums.", strings.ToUpper(strings.TrimSuffix(name, "sum"))),
	}
	flags := cmd.Flags()
	check := flags.BoolLong("check", 'c', "read checksums from the FILEs and check them")
	quiet := flags.BoolLong("quiet", 0, "don't print OK for each successfully verified file")
	status := flags.BoolLong("status", 0, "don't output anything, status code shows success")

	sum := func(data string) string {
		h := newHash()
		io.WriteString(h, data)
		return hex.EncodeToString(h.Sum(nil))
	}

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		if !*check {
			return cmd.RunEachFileOrStdin(virtOS, flags.Args(), func(file string, fd io.Reader) error {
				data, err := io.ReadAll(fd)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s  %s\n", sum(string(data)), file)
				return nil
			})
		}

		failed := 0
		exitCode := cmd.RunEachFileOrStdin(virtOS, flags.Args(), func(_ string, fd io.Reader) error {
			scanner := bufio.NewScanner(fd)
			for scanner.Scan() {
				want, file, ok := strings.Cut(scanner.Text(), "  ")
				if !ok {
					continue
				}
				data, err := readFile(virtOS, file)
				result := "OK"
				if err != nil {
					result = "FAILED open or read"
					failed++
				} else if sum(data) != want {
					result = "FAILED"
					failed++
				}
				if !*status && (!*quiet || result != "OK") {
					fmt.Fprintf(w, "%s: %s\n", file, result)
				}
			}
			return nil
		})
		if failed > 0 {
			if !*status {
				fmt.Fprintf(virtOS.Stderr(), "%s: WARNING: %d computed checksum did NOT match\n", name, failed)
			}
			return 1
		}
		return exitCode
	})
}

// Base64 encodes or decodes base64 data.
func Base64(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "base64 [OPTION]... [FILE]",
		Short: "Base64 encode or decode FILE, or standard input, to standard output.",
	}
	flags := cmd.Flags()
	decode := flags.BoolLong("decode", 'd', "decode data")
	ignoreGarbage := flags.BoolLong("ignore-garbage", 'i', "when decoding, ignore non-alphabet characters")
	wrap := flags.IntLong("wrap", 'w', 76, "wrap encoded lines after COLS character, 0 disables")

	return cmd.Run(virtOS, func() int {
		if len(flags.Args()) > 1 {
			fmt.Fprintf(virtOS.Stderr(), "base64: extra operand '%s'\n", flags.Args()[1])
			return 1
		}
		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		if exitCode != 0 {
			return exitCode
		}

		w := virtOS.Stdout()
		if *decode {
			clean := strings.Map(func(r rune) rune {
				switch {
				case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '/', r == '=':
					return r
				case r == '\n' || r == '\r' || *ignoreGarbage:
					return -1
				}
				return r
			}, text)
			data, err := base64.StdEncoding.DecodeString(clean)
			if err != nil {
				fmt.Fprintln(virtOS.Stderr(), "base64: invalid input")
				return 1
			}
			w.Write(data)
			return 0
		}

		encoded := base64.StdEncoding.EncodeToString([]byte(text))
		if *wrap <= 0 {
			fmt.Fprintln(w, encoded)
			return 0
		}
		for len(encoded) > *wrap {
			fmt.Fprintln(w, encoded[:*wrap])
			encoded = encoded[*wrap:]
		}
		if encoded != "" {
			fmt.Fprintln(w, encoded)
		}
		return 0
	})
}

var _ vos.ProcessFunc = Cksum
var _ vos.ProcessFunc = Md5sum
var _ vos.ProcessFunc = Sha1sum
var _ vos.ProcessFunc = Sha256sum
var _ vos.ProcessFunc = Sha512sum
var _ vos.ProcessFunc = Base64

func init() {
	mustAddUsrBinCmd("cksum", Cksum)
	mustAddUsrBinCmd("md5sum", Md5sum)
	mustAddUsrBinCmd("sha1sum", Sha1sum)
	mustAddUsrBinCmd("sha256sum", Sha256sum)
	mustAddUsrBinCmd("sha512sum", Sha512sum)
	mustAddUsrBinCmd("base64", Base64)
}
