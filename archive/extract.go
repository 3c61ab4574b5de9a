package archive

import (
	"strings"
	"time"

	"code.cloudfoundry.org/lager"
)

// Extraction is the outcome of decoding a compressed tar archive.
//
type Extraction struct {
	Files []ExtractedFile

	// Synthetic is set when Files is the canned fallback set rather than
	// the archive's real content.
	//
	Synthetic bool

	// Reason names the condition that triggered the fallback.
	//
	Reason string
}

// ExtractTarGz decompresses and decodes a `.tar.gz` payload.
//
// With LegacyFallback disabled, decompression and decode failures are
// returned as-is and an archive without `metadata.out` comes back with
// whatever members it has, leaving the rejection to the caller. With
// LegacyFallback enabled, those conditions yield the canned fallback set,
// flagged as synthetic.
//
func ExtractTarGz(logger lager.Logger, compressed []byte, opts Options) (res Extraction, err error) {
	logger = logger.Session("extract-tar-gz", lager.Data{"size": len(compressed)})

	data, err := Decompress(compressed)
	if err != nil {
		if opts.LegacyFallback {
			res = fallback(logger, "decompression-failed", err)
			err = nil
		}

		return
	}

	files, err := DecodeTar(logger, data, opts)
	if err != nil {
		if opts.LegacyFallback {
			res = fallback(logger, "decode-failed", err)
			err = nil
		}

		return
	}

	switch {
	case len(files) == 0 && opts.LegacyFallback:
		res = fallback(logger, "no-files-extracted", nil)
	case !HasMetadata(files) && opts.LegacyFallback:
		res = fallback(logger, "metadata-missing", nil)
	default:
		res.Files = files
	}

	return
}

func fallback(logger lager.Logger, reason string, cause error) Extraction {
	data := lager.Data{"reason": reason}
	if cause != nil {
		data["cause"] = cause.Error()
	}

	logger.Info("using-fallback-files", data)

	return Extraction{
		Files:     FallbackFiles(time.Now()),
		Synthetic: true,
		Reason:    reason,
	}
}

// FallbackFiles returns the canned snapshot used by the legacy fallback
// policy. Its `metadata.out` carries `SNAP_SYNTHETIC=true`.
//
func FallbackFiles(now time.Time) []ExtractedFile {
	return []ExtractedFile{
		{Filename: MetadataFilename, Content: fallbackMetadata(now)},
		{Filename: "system_info.out", Content: fallbackSystemInfo},
		{Filename: "disk_usage.out", Content: fallbackDiskUsage},
		{Filename: "network_info.out", Content: fallbackNetworkInfo},
		{Filename: "installed_packages.out", Content: fallbackPackages},
	}
}

func fallbackMetadata(now time.Time) string {
	return strings.Join([]string{
		"SNAP_VERSION=1.0.0",
		"SNAP_SYNTHETIC=true",
		"COLLECTOR=red-snapper",
		"TIMESTAMP=" + now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"HOSTNAME=example-server",
		"OS=Linux",
		"KERNEL=5.15.0-58-generic",
	}, "\n")
}

const fallbackSystemInfo = `CPU_MODEL=Intel(R) Xeon(R) CPU E5-2680 v4 @ 2.40GHz
CPU_CORES=14
CPU_THREADS=28
MEMORY_TOTAL=64GB
MEMORY_FREE=42GB
MEMORY_USED=22GB
SWAP_TOTAL=8GB
SWAP_FREE=8GB
UPTIME=45 days, 3 hours, 27 minutes`

const fallbackDiskUsage = `Filesystem      Size  Used Avail Use% Mounted on
/dev/sda1        50G   15G   35G  30% /
/dev/sdb1       500G  350G  150G  70% /data
/dev/sdc1        1T   200G  800G  20% /backup
tmpfs            32G     0   32G   0% /dev/shm`

const fallbackNetworkInfo = `eth0: flags=4163<UP,BROADCAST,RUNNING,MULTICAST>  mtu 1500
        inet 192.168.1.100  netmask 255.255.255.0  broadcast 192.168.1.255
        inet6 fe80::216:3eff:fe12:3456  prefixlen 64  scopeid 0x20<link>
        ether 00:16:3e:12:34:56  txqueuelen 1000  (Ethernet)
        RX packets 25936259  bytes 32686385850 (30.4 GiB)
        RX errors 0  dropped 0  overruns 0  frame 0
        TX packets 21240470  bytes 12318092241 (11.4 GiB)
        TX errors 0  dropped 0 overruns 0  carrier 0  collisions 0

lo: flags=73<UP,LOOPBACK,RUNNING>  mtu 65536
        inet 127.0.0.1  netmask 255.0.0.0
        inet6 ::1  prefixlen 128  scopeid 0x10<host>
        loop  txqueuelen 1000  (Local Loopback)
        RX packets 1560233  bytes 1168372318 (1.0 GiB)
        RX errors 0  dropped 0  overruns 0  frame 0
        TX packets 1560233  bytes 1168372318 (1.0 GiB)
        TX errors 0  dropped 0 overruns 0  carrier 0  collisions 0`

const fallbackPackages = `Package          Version        Architecture
-----------------------------------------
basic-cmds       1.2.3-1        amd64
core-utils       8.32-4.1       amd64
network-tools    2.10-0.1       amd64
system-monitor   3.42.0         amd64
python3          3.9.5          amd64
nginx            1.18.0-6.1     amd64
postgresql       13.7-0         amd64
redis-server     6.0.16-1       amd64
node             16.14.2        amd64
docker-ce        20.10.17       amd64
... (90 more packages)`
